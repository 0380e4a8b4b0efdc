package gemini

import (
	"strings"

	"github.com/yungbote/pathfinder-roadmap/internal/provider/normalize"
)

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	CandidateCount  int     `json:"candidateCount"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings"`
}

type candidate struct {
	Content      *content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type generateResponse struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

// Roadmap prompts for careers like security or medicine trip the default filters.
func permissiveSafety() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	out := make([]safetySetting, len(categories))
	for i, c := range categories {
		out[i] = safetySetting{Category: c, Threshold: "BLOCK_NONE"}
	}
	return out
}

func finishReason(raw string) normalize.FinishReason {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "STOP":
		return normalize.FinishStop
	case "MAX_TOKENS":
		return normalize.FinishLength
	case "SAFETY", "PROHIBITED_CONTENT", "BLOCKLIST", "SPII":
		return normalize.FinishSafety
	case "", "FINISH_REASON_UNSPECIFIED":
		return normalize.FinishUnspecified
	default:
		return normalize.FinishOther
	}
}

// completion reads the first candidate's text parts.
func (r *generateResponse) completion() normalize.Completion {
	if len(r.Candidates) == 0 {
		return normalize.Completion{}
	}
	c := r.Candidates[0]
	var b strings.Builder
	if c.Content != nil {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
	}
	return normalize.Completion{
		Candidates: len(r.Candidates),
		Text:       b.String(),
		Finish:     finishReason(c.FinishReason),
	}
}
