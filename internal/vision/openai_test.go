package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/config"
)

func newTestClassifier(url string) *OpenAIClassifier {
	return NewOpenAIClassifier(&config.Config{
		OpenAIAPIKey: "test-key",
		OpenAIAPIURL: url,
		OpenAIModel:  "gpt-4o-mini",
		AITimeout:    5 * time.Second,
	})
}

func visionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func TestModerate_ParsesFlaggedVerdict(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(visionResponse(`{"flagged": true, "categories": {"r18": true, "r18g": false, "illegal": false}, "confidence": 0.95, "reason": "explicit imagery"}`)))
	}))
	defer server.Close()

	classifier := newTestClassifier(server.URL)
	verdict := classifier.Moderate(context.Background(), []byte("fake image"), "image/png")

	if !verdict.Flagged {
		t.Fatalf("expected flagged verdict")
	}
	if !verdict.Categories["r18"] || verdict.Categories["r18g"] {
		t.Fatalf("unexpected categories: %v", verdict.Categories)
	}
	if verdict.Confidence != 0.95 {
		t.Fatalf("expected confidence 0.95, got %v", verdict.Confidence)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}

	if len(gotBody.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(gotBody.Messages))
	}
	parts, ok := gotBody.Messages[0].Content.([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("expected prompt and image parts, got %v", gotBody.Messages[0].Content)
	}
	imagePart, _ := parts[1].(map[string]any)
	imageURL, _ := imagePart["image_url"].(map[string]any)
	url, _ := imageURL["url"].(string)
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("expected base64 data URL with content type, got %q", url)
	}
}

func TestModerate_StripsMarkdownFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(visionResponse("```json\n{\"flagged\": true, \"categories\": {\"r18g\": true}, \"confidence\": 0.8}\n```")))
	}))
	defer server.Close()

	verdict := newTestClassifier(server.URL).Moderate(context.Background(), []byte("x"), "image/jpeg")
	if !verdict.Flagged || !verdict.Categories["r18g"] {
		t.Fatalf("expected fenced JSON to parse, got %+v", verdict)
	}
}

func TestModerate_ServerErrorFailsOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	verdict := newTestClassifier(server.URL).Moderate(context.Background(), []byte("x"), "image/jpeg")
	if verdict.Flagged {
		t.Fatalf("expected safe verdict on server error, got %+v", verdict)
	}
	if verdict.Confidence != 0 {
		t.Fatalf("expected zero confidence on failure, got %v", verdict.Confidence)
	}
}

func TestModerate_MalformedResponseFailsOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(visionResponse("I cannot analyze this image, sorry!")))
	}))
	defer server.Close()

	verdict := newTestClassifier(server.URL).Moderate(context.Background(), []byte("x"), "image/jpeg")
	if verdict.Flagged {
		t.Fatalf("expected safe verdict on unparseable output, got %+v", verdict)
	}
}

func TestModerate_MissingAPIKeySkipsCall(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	classifier := NewOpenAIClassifier(&config.Config{OpenAIAPIURL: server.URL})
	verdict := classifier.Moderate(context.Background(), []byte("x"), "image/jpeg")
	if verdict.Flagged {
		t.Fatalf("expected safe verdict without credentials")
	}
	if hits != 0 {
		t.Fatalf("expected no API call without credentials, got %d", hits)
	}
}

func TestParseVerdict_ExtractsEmbeddedJSON(t *testing.T) {
	verdict, err := parseVerdict(`Here is the analysis: {"flagged": true, "categories": {"illegal": true}, "confidence": 0.7} as requested.`)
	if err != nil {
		t.Fatalf("parseVerdict failed: %v", err)
	}
	if !verdict.Flagged || !verdict.Categories["illegal"] {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestParseVerdict_ClampsConfidence(t *testing.T) {
	verdict, err := parseVerdict(`{"flagged": true, "confidence": 1.8}`)
	if err != nil {
		t.Fatalf("parseVerdict failed: %v", err)
	}
	if verdict.Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %v", verdict.Confidence)
	}
	if verdict.Categories == nil {
		t.Fatalf("expected non-nil categories map")
	}

	verdict, err = parseVerdict(`{"flagged": false, "confidence": -0.5}`)
	if err != nil {
		t.Fatalf("parseVerdict failed: %v", err)
	}
	if verdict.Confidence != 0 {
		t.Fatalf("expected confidence clamped to 0, got %v", verdict.Confidence)
	}
}
