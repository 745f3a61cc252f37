package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/config"
)

const moderationPrompt = `Analyze this image and decide whether it falls into any of these categories:

1. r18 (adult content): sexual content or nudity
2. r18g (grotesque content): violent, cruel or gory imagery
3. illegal: illegal drugs, inappropriate weapon use, or other illegal content

Answer with a JSON object in exactly this shape:
{
  "flagged": true/false,
  "categories": {
    "r18": true/false,
    "r18g": true/false,
    "illegal": true/false
  },
  "confidence": 0.0-1.0,
  "reason": "short explanation of the decision"
}

IMPORTANT: respond with the JSON object only, no other text.`

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIClassifier runs content moderation through an OpenAI-compatible
// chat-completions vision endpoint.
type OpenAIClassifier struct {
	apiURL  string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
}

func NewOpenAIClassifier(cfg *config.Config) *OpenAIClassifier {
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClassifier{
		apiURL:  cfg.OpenAIAPIURL,
		apiKey:  cfg.OpenAIAPIKey,
		model:   cfg.OpenAIModel,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Moderate classifies the image. Any failure (missing credentials,
// transport error, non-2xx status, unparseable response) is logged and
// mapped to SafeVerdict.
func (c *OpenAIClassifier) Moderate(ctx context.Context, image []byte, contentType string) Verdict {
	if c.apiKey == "" {
		return SafeVerdict()
	}

	verdict, err := c.callVisionAPI(ctx, image, contentType)
	if err != nil {
		slog.Error("vision API call failed", "action", "image_moderation", "error", err)
		return SafeVerdict()
	}
	return verdict
}

func (c *OpenAIClassifier) callVisionAPI(ctx context.Context, image []byte, contentType string) (Verdict, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: []chatContentPart{
				{Type: "text", Text: moderationPrompt},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}},
			}},
		},
		MaxTokens: 500,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Verdict{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Verdict{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Verdict{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Verdict{}, fmt.Errorf("vision API error: status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return Verdict{}, err
	}
	if len(completion.Choices) == 0 {
		return Verdict{}, errors.New("no response from vision API")
	}

	return parseVerdict(completion.Choices[0].Message.Content)
}

// parseVerdict extracts the JSON verdict from the model output. Models
// sometimes wrap the JSON in a markdown code fence or surrounding prose.
func parseVerdict(content string) (Verdict, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return Verdict{}, fmt.Errorf("failed to parse verdict: %w", err)
		}
		if err2 := json.Unmarshal([]byte(content[start:end+1]), &verdict); err2 != nil {
			return Verdict{}, fmt.Errorf("failed to parse verdict: %w", err2)
		}
	}

	if verdict.Categories == nil {
		verdict.Categories = map[string]bool{}
	}
	if verdict.Confidence < 0 {
		verdict.Confidence = 0
	}
	if verdict.Confidence > 1 {
		verdict.Confidence = 1
	}
	return verdict, nil
}
