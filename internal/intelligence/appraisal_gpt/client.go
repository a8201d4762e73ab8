package appraisal_gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/pkg/errors"
)

// Suggestion is the fully-parsed appraisal result. Both fields are required;
// a response missing either is rejected outright (no partial results).
type Suggestion struct {
	Points    int    `json:"points"`
	Reasoning string `json:"reasoning"`
}

// Appraiser is the contract the valuation engine depends on.
type Appraiser interface {
	// Enabled reports whether a call is worth attempting at all.
	Enabled() bool

	// SuggestPoints requests a point appraisal. Any returned error means
	// the caller must use its deterministic fallback; errors are never
	// user-facing.
	SuggestPoints(ctx context.Context, in *PromptInput) (*Suggestion, error)
}

// httpAppraiser calls an OpenAI-compatible chat-completions endpoint.
type httpAppraiser struct {
	cfg    *Config
	client *http.Client
	logger logging.Logger
}

// NewAppraiser constructs the HTTP-backed Appraiser. A nil or disabled
// config yields a client whose Enabled() is false; SuggestPoints on it
// returns an unavailable error without any network activity.
func NewAppraiser(cfg *Config, logger logging.Logger) Appraiser {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &httpAppraiser{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

func (a *httpAppraiser) Enabled() bool {
	return a.cfg.Enabled()
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (a *httpAppraiser) SuggestPoints(ctx context.Context, in *PromptInput) (*Suggestion, error) {
	if !a.Enabled() {
		return nil, errors.Unavailable("appraisal service not configured")
	}
	a.logger.Debug("requesting point appraisal",
		logging.String("model", a.cfg.Model),
		logging.String("title", in.Title),
	)

	body, err := json.Marshal(chatRequest{
		Model: a.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(in)},
		},
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxOutputTokens,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal appraisal request")
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "build appraisal request")
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "appraisal request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeExternalService,
			fmt.Sprintf("appraisal service returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "read appraisal response")
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode appraisal response")
	}
	if len(cr.Choices) == 0 {
		return nil, errors.New(errors.ErrCodeExternalService, "appraisal response has no choices")
	}

	return ParseSuggestion(cr.Choices[0].Message.Content, in.MinPoints, in.MaxPoints)
}

// ParseSuggestion extracts the first well-formed JSON object from raw text
// and validates it as a point suggestion. The text is untrusted upstream
// output: the object must carry both fields and the points must lie within
// [minPoints, maxPoints], otherwise the whole response is discarded.
func ParseSuggestion(text string, minPoints, maxPoints int) (*Suggestion, error) {
	obj, ok := firstJSONObject(text)
	if !ok {
		return nil, errors.New(errors.ErrCodeSerialization, "no JSON object in appraisal output")
	}

	var payload struct {
		Points    *float64 `json:"points"`
		Reasoning *string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "malformed appraisal JSON")
	}
	if payload.Points == nil || payload.Reasoning == nil {
		return nil, errors.New(errors.ErrCodeSerialization, "appraisal JSON missing points or reasoning")
	}

	points := int(*payload.Points)
	if points < minPoints || points > maxPoints {
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("appraised points %d outside [%d, %d]", points, minPoints, maxPoints))
	}
	reasoning := strings.TrimSpace(*payload.Reasoning)
	if reasoning == "" {
		return nil, errors.New(errors.ErrCodeSerialization, "appraisal reasoning is empty")
	}

	return &Suggestion{Points: points, Reasoning: reasoning}, nil
}

// firstJSONObject scans text for the first balanced top-level JSON object,
// tracking string literals and escapes so braces inside strings do not
// confuse the depth count.
func firstJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case !inString && r == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case !inString && r == '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+size], true
				}
			}
		}
		i += size
	}
	return "", false
}
