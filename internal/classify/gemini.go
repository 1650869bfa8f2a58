package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jonathan/review-analyzer/internal/prompts"
	"github.com/jonathan/review-analyzer/internal/taxonomy"
	"github.com/jonathan/review-analyzer/internal/types"
)

// DefaultModel is used when no model is configured. Classification is a
// simple extraction task, so the lite tier is sufficient.
const DefaultModel = "gemini-2.5-flash-lite"

// GeminiClassifier implements Classifier against the Gemini API.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier creates a classifier backed by the Gemini API.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, &Error{Kind: KindFatal, Message: "API key is required"}
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &Error{Kind: KindFatal, Message: "failed to create Gemini client", Cause: err}
	}
	return &GeminiClassifier{client: client, model: model}, nil
}

// labelResponse is the JSON shape the classification prompt requests.
type labelResponse struct {
	Categories []string `json:"categories"`
	Sentiment  string   `json:"sentiment"`
}

// Classify assigns category labels to one review.
func (c *GeminiClassifier) Classify(ctx context.Context, text string, votedUp bool) (*Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Kind: KindContentRejected, Message: "empty review text"}
	}

	prompt := buildClassifyPrompt(text, votedUp)

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, classifyAPIError(err)
	}

	usage := usageFrom(resp)

	raw, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	var parsed labelResponse
	if err := json.Unmarshal([]byte(CleanJSONBlock(raw)), &parsed); err != nil {
		// Malformed model output; a fresh call usually fixes it.
		return nil, &Error{Kind: KindTransient, Message: fmt.Sprintf("unparseable response %q", truncate(raw, 200)), Cause: err}
	}

	return &Outcome{
		Labels:      taxonomy.Normalize(parsed.Categories, votedUp),
		Sentiment:   strings.TrimSpace(parsed.Sentiment),
		RawResponse: raw,
		Usage:       usage,
	}, nil
}

// Ping performs a minimal round trip to verify connectivity and credentials.
func (c *GeminiClassifier) Ping(ctx context.Context) error {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1)
	resp, err := model.GenerateContent(ctx, genai.Text(prompts.MustGet("classify.json", "ping")))
	if err != nil {
		return &Error{Kind: KindFatal, Message: "connectivity self-test failed", Cause: err}
	}
	if _, err := extractText(resp); err != nil {
		return &Error{Kind: KindFatal, Message: "connectivity self-test returned no text", Cause: err}
	}
	return nil
}

// Close releases the underlying connection.
func (c *GeminiClassifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// buildClassifyPrompt fills the classification template for one review.
func buildClassifyPrompt(text string, votedUp bool) string {
	template := prompts.MustGet("classify.json", "classify-review")
	sentiment := "recommended"
	if !votedUp {
		sentiment = "not recommended"
	}
	return prompts.Format(template, map[string]string{
		"ReviewText": text,
		"Sentiment":  sentiment,
		"Categories": taxonomy.PromptList(votedUp),
		"CatchAll":   taxonomy.CatchAll(votedUp),
	})
}

// extractText pulls the text content out of a Gemini response, mapping
// safety blocks onto the content-rejected error kind.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", &Error{
			Kind:    KindContentRejected,
			Message: fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
		}
	}
	if len(resp.Candidates) == 0 {
		return "", &Error{Kind: KindTransient, Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety ||
		candidate.FinishReason == genai.FinishReasonRecitation {
		return "", &Error{
			Kind:    KindContentRejected,
			Message: fmt.Sprintf("response blocked: %s", candidate.FinishReason),
		}
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &Error{Kind: KindTransient, Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", &Error{Kind: KindTransient, Message: "no text parts in response"}
	}
	return strings.Join(parts, ""), nil
}

// usageFrom extracts token accounting when the provider reports it.
func usageFrom(resp *genai.GenerateContentResponse) types.Usage {
	if resp.UsageMetadata == nil {
		return types.Usage{}
	}
	return types.Usage{
		InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
	}
}

// classifyAPIError maps a provider error onto the classifier error taxonomy.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return &Error{Kind: KindRateLimited, Message: "provider rate limit", Cause: err}
		case apiErr.Code == 401 || apiErr.Code == 403:
			return &Error{Kind: KindFatal, Message: "authentication rejected", Cause: err}
		case apiErr.Code == 400:
			return &Error{Kind: KindContentRejected, Message: "request rejected by provider", Cause: err}
		case apiErr.Code >= 500:
			return &Error{Kind: KindTransient, Message: fmt.Sprintf("provider error %d", apiErr.Code), Cause: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTransient, Message: "network failure", Cause: err}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") {
		return &Error{Kind: KindRateLimited, Message: "provider rate limit", Cause: err}
	}

	return &Error{Kind: KindTransient, Message: "call failed", Cause: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
