// Package vision adapts an OpenAI-compatible vision API into a
// normalized moderation verdict.
//
// The classifier is fail-open: if the backing service is
// unconfigured, unreachable, or returns output we cannot parse, Moderate
// returns the safe (not flagged) verdict instead of an error. Moderation
// failures never block posting and never escalate automatically; they
// only ever under-flag. The flip side is that an API outage silently
// disables AI moderation, leaving images under human reports only.
package vision

import "context"

// Verdict is the normalized output of the classifier for one image.
// Categories are classifier-defined free-form keys; any true-valued
// category counts as a detection.
type Verdict struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
	Confidence float64         `json:"confidence"`
	Reason     string          `json:"reason,omitempty"`
}

// SafeVerdict is the verdict used whenever classification cannot be
// performed or trusted.
func SafeVerdict() Verdict {
	return Verdict{Flagged: false, Categories: map[string]bool{}, Confidence: 0}
}

// Classifier takes image bytes and returns a moderation verdict.
// Implementations must not return errors; technical failure maps to
// SafeVerdict.
type Classifier interface {
	Moderate(ctx context.Context, image []byte, contentType string) Verdict
}
