package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap/roadmaptest"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func chatReply(content, finish string) *http.Response {
	body := map[string]any{
		"choices": []any{map[string]any{
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 100, "completion_tokens": 900},
	}
	b, _ := json.Marshal(body)
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(b))}
}

func roadmapJSON() string {
	var mods []string
	for i := 1; i <= 6; i++ {
		mods = append(mods, fmt.Sprintf(`{
			"id": "module-%d", "title": "Stage %d", "estimated_hours": 20,
			"skills_taught": ["knife skills"],
			"resources": [
				{"title": "Book", "type": "books", "url": "https://example.com/book", "difficulty": "Intermediate"},
				{"title": "Class", "type": "course", "url": "https://example.com/class"}
			],
			"project": {"title": "Tasting menu", "deliverables": ["menu", "photos"], "estimated_hours": 6},
			"assessment": "Cook the menu for a panel"
		}`, i, i))
	}
	return `{"estimated_weeks": 12, "modules": [` + strings.Join(mods, ",") + `]}`
}

func newTestProvider(t *testing.T, rt roundTripperFunc) *Provider {
	t.Helper()
	p, err := New(Config{APIKey: "sk-test", BaseURL: "http://oai", MaxTokens: 4096, HTTPClient: &http.Client{Transport: rt}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestGenerateRoadmapUsesJSONMode(t *testing.T) {
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != DefaultChatPath {
			t.Fatalf("path=%s", req.URL.Path)
		}
		if req.Header.Get("Authorization") != "Bearer sk-test" {
			t.Fatalf("auth=%q", req.Header.Get("Authorization"))
		}
		var in chatRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if in.ResponseFormat == nil || in.ResponseFormat.Type != "json_object" {
			t.Fatalf("json mode not requested")
		}
		if in.MaxTokens != 4096 || in.Model != DefaultModel || len(in.Messages) != 2 {
			t.Fatalf("req=%+v", in)
		}
		if in.Messages[0].Role != "system" || !strings.Contains(in.Messages[1].Content, "(intermediate)") {
			t.Fatalf("messages=%+v", in.Messages)
		}
		return chatReply(roadmapJSON(), "stop"), nil
	})

	r, err := p.GenerateRoadmap(context.Background(), roadmaptest.Request("Chef"), "u-2")
	if err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}
	if len(r.Modules) != 6 || r.EstimatedWeeks != 12 {
		t.Fatalf("roadmap=%+v", r)
	}
	m := r.Modules[5]
	if m.Project == nil || m.Project.Title != "Tasting menu" || len(m.Project.Deliverables) != 2 {
		t.Fatalf("project=%+v", m.Project)
	}
	if m.Resources[0].Type != "book" || m.Resources[0].Difficulty != "intermediate" {
		t.Fatalf("resource=%+v", m.Resources[0])
	}
}

func TestGenerateRoadmapFinishReasons(t *testing.T) {
	full := roadmapJSON()
	cases := []struct {
		name string
		resp *http.Response
		code string
	}{
		{"no choices", &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`{"choices": []}`))}, provider.CodeSafetyFilter},
		{"content filter", chatReply("", "content_filter"), provider.CodeSafetyBlocked},
		{"length empty", chatReply("", "length"), provider.CodeMaxTokensExceeded},
		{"length truncated", chatReply(full[:200], "length"), provider.CodeTruncatedResponse},
		{"length complete", chatReply(full, "length"), ""},
		{"stop invalid", chatReply("{nope", "stop"), provider.CodeParse},
	}
	for _, tc := range cases {
		p := newTestProvider(t, func(req *http.Request) (*http.Response, error) { return tc.resp, nil })
		_, err := p.GenerateRoadmap(context.Background(), roadmaptest.Request("Chef"), "u")
		if got := provider.CodeOf(err); got != tc.code {
			t.Fatalf("%s: code=%q want %q (err=%v)", tc.name, got, tc.code, err)
		}
	}
}

func TestRefusalIsSafetyBlock(t *testing.T) {
	var r chatResponse
	_ = json.Unmarshal([]byte(`{"choices":[{"message":{"content":"","refusal":"I can't help"},"finish_reason":"stop"}]}`), &r)
	if got := r.completion().Finish.String(); got != "safety" {
		t.Fatalf("finish=%s", got)
	}
}

func TestHealthCheck(t *testing.T) {
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 401, Body: io.NopCloser(strings.NewReader(`{"error":"bad key"}`))}, nil
	})
	st := p.HealthCheck(context.Background())
	if st.Healthy() || st.APIAccessible || !strings.Contains(st.Error, "401") {
		t.Fatalf("status=%+v", st)
	}
	p = newTestProvider(t, func(req *http.Request) (*http.Response, error) { return chatReply("Hi", "stop"), nil })
	if st := p.HealthCheck(context.Background()); !st.Healthy() {
		t.Fatalf("status=%+v", st)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatalf("expected error")
	}
	p, err := New(Config{APIKey: "k"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if info := p.ModelInfo(); info.MaxTokens != DefaultMaxTokens || info.Endpoint != DefaultBaseURL {
		t.Fatalf("info=%+v", info)
	}
}
