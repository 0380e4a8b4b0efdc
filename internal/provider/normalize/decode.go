// Package normalize turns raw model output into a validated roadmap.
//
// Decode is the strict half: it classifies the completion (blocked, truncated,
// empty), strips markdown fences and parses a JSON object. Build is the tolerant
// half: it fills defaults, coerces enums and hands the result to the schema
// constructors, which are the final gate.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
)

type FinishReason int

const (
	FinishUnspecified FinishReason = iota
	FinishStop
	FinishLength
	FinishSafety
	FinishOther
)

func (f FinishReason) String() string {
	switch f {
	case FinishStop:
		return "stop"
	case FinishLength:
		return "length"
	case FinishSafety:
		return "safety"
	case FinishOther:
		return "other"
	default:
		return "unspecified"
	}
}

// Completion is the backend-neutral view of one model reply.
type Completion struct {
	// Candidates is how many candidate outputs the backend returned. Zero means it refused outright.
	Candidates int
	Text       string
	Finish     FinishReason
}

type Normalizer struct {
	Provider string
	Log      *logger.Logger
	Now      func() time.Time
}

func New(providerName string, log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{
		Provider: providerName,
		Log:      log.With("service", "Normalizer", "provider", providerName),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Decode applies the block, finish-reason, fence and JSON gates in that order.
func (n *Normalizer) Decode(c Completion) (map[string]any, error) {
	if c.Candidates == 0 {
		n.Log.Error("no candidates in model response")
		return nil, provider.Errorf(n.Provider, provider.CodeSafetyFilter, "response was blocked by safety filters")
	}

	text := strings.TrimSpace(c.Text)
	switch {
	case c.Finish == FinishSafety:
		n.Log.Error("response blocked by safety filters")
		return nil, provider.Errorf(n.Provider, provider.CodeSafetyBlocked, "response blocked by safety filters, try adjusting the request")
	case c.Finish == FinishLength && text == "":
		return nil, provider.Errorf(n.Provider, provider.CodeMaxTokensExceeded, "response exceeded the token limit and no partial content is available")
	case c.Finish == FinishLength:
		n.Log.Warn("response hit the token limit, using partial content", "content_length", len(text))
	case text == "":
		return nil, provider.Errorf(n.Provider, provider.CodeNoContent, "model returned no content")
	}

	cleaned := StripFences(text)
	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil || data == nil {
		if err == nil {
			err = errNotObject
		}
		n.Log.Error("failed to parse model output as JSON", "error", err, "finish_reason", c.Finish.String(), "preview", preview(cleaned, 300))
		if c.Finish == FinishLength {
			return nil, provider.NewError(n.Provider, provider.CodeTruncatedResponse,
				"response was truncated by the token limit, reduce the prompt or raise max_tokens", err)
		}
		return nil, provider.NewError(n.Provider, provider.CodeParse, "failed to parse model response as JSON", err)
	}
	return data, nil
}

// StripFences removes a leading ```json or ``` and a trailing ```. Anything else is left alone.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case len(s) >= 7 && strings.EqualFold(s[:7], "```json"):
		s = s[7:]
	case strings.HasPrefix(s, "```"):
		s = s[3:]
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

type parseError string

func (e parseError) Error() string { return string(e) }

const errNotObject = parseError("model output is not a JSON object")

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
