package openai

import (
	"strings"

	"github.com/yungbote/pathfinder-roadmap/internal/provider/normalize"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

func finishReason(raw string) normalize.FinishReason {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "stop":
		return normalize.FinishStop
	case "length":
		return normalize.FinishLength
	case "content_filter":
		return normalize.FinishSafety
	case "":
		return normalize.FinishUnspecified
	default:
		return normalize.FinishOther
	}
}

func (r *chatResponse) completion() normalize.Completion {
	if len(r.Choices) == 0 {
		return normalize.Completion{}
	}
	c := r.Choices[0]
	finish := finishReason(c.FinishReason)
	// A refusal is the chat API's form of a safety block.
	if c.Message.Refusal != "" && strings.TrimSpace(c.Message.Content) == "" {
		finish = normalize.FinishSafety
	}
	return normalize.Completion{
		Candidates: len(r.Choices),
		Text:       c.Message.Content,
		Finish:     finish,
	}
}
