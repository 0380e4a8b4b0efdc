package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap/roadmaptest"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
)

func fixedNormalizer() *Normalizer {
	n := New("test", nil)
	n.Now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return n
}

func sixModules(mutate func(i int, m map[string]any)) map[string]any {
	modules := make([]any, 6)
	for i := range modules {
		m := map[string]any{
			"id":              fmt.Sprintf("module-%d", i+1),
			"title":           fmt.Sprintf("Stage %d", i+1),
			"description":     "desc",
			"estimated_hours": float64(30),
			"skills_taught":   []any{"python", "testing", "git"},
			"resources": []any{
				map[string]any{"title": "A", "type": "video", "url": "https://a"},
				map[string]any{"title": "B", "type": "docs", "url": "https://b"},
			},
			"projects": []any{
				map[string]any{"title": "Build a CLI", "description": "d", "deliverables": "a working binary", "estimated_hours": float64(12)},
			},
			"assessment": "Ship it",
		}
		if mutate != nil {
			mutate(i, m)
		}
		modules[i] = m
	}
	return map[string]any{"estimated_weeks": float64(18), "modules": modules}
}

func encode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestDecodeGates(t *testing.T) {
	valid := `{"modules": []}`
	cases := []struct {
		name string
		c    Completion
		code string
	}{
		{"no candidates", Completion{Candidates: 0, Text: valid, Finish: FinishStop}, provider.CodeSafetyFilter},
		{"safety", Completion{Candidates: 1, Text: valid, Finish: FinishSafety}, provider.CodeSafetyBlocked},
		{"safety no content", Completion{Candidates: 1, Finish: FinishSafety}, provider.CodeSafetyBlocked},
		{"length empty", Completion{Candidates: 1, Text: "  ", Finish: FinishLength}, provider.CodeMaxTokensExceeded},
		{"stop empty", Completion{Candidates: 1, Finish: FinishStop}, provider.CodeNoContent},
		{"other empty", Completion{Candidates: 1, Finish: FinishOther}, provider.CodeNoContent},
		{"length garbage", Completion{Candidates: 1, Text: `{"modules": [{"id": "mod`, Finish: FinishLength}, provider.CodeTruncatedResponse},
		{"stop garbage", Completion{Candidates: 1, Text: `here is your roadmap`, Finish: FinishStop}, provider.CodeParse},
		{"array", Completion{Candidates: 1, Text: `[1,2]`, Finish: FinishStop}, provider.CodeParse},
		{"null", Completion{Candidates: 1, Text: `null`, Finish: FinishStop}, provider.CodeParse},
		{"length valid", Completion{Candidates: 1, Text: valid, Finish: FinishLength}, ""},
		{"fenced", Completion{Candidates: 1, Text: "```json\n" + valid + "\n```", Finish: FinishStop}, ""},
	}
	n := fixedNormalizer()
	for _, tc := range cases {
		data, err := n.Decode(tc.c)
		if got := provider.CodeOf(err); got != tc.code {
			t.Fatalf("%s: code=%q want %q (err=%v)", tc.name, got, tc.code, err)
		}
		if tc.code == "" && data == nil {
			t.Fatalf("%s: expected data", tc.name)
		}
		if tc.code != "" && data != nil {
			t.Fatalf("%s: expected no data", tc.name)
		}
	}
}

func TestDecodeParseErrorsCarryCause(t *testing.T) {
	_, err := fixedNormalizer().Decode(Completion{Candidates: 1, Text: "{", Finish: FinishLength})
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("cause not attached: %v", err)
	}
	if !strings.Contains(err.Error(), "max_tokens") {
		t.Fatalf("message should suggest raising max_tokens: %v", err)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"```JSON {\"a\":1} ```":   `{"a":1}`,
	}
	for in, want := range cases {
		if got := StripFences(in); got != want {
			t.Fatalf("StripFences(%q)=%q want %q", in, got, want)
		}
	}
}

func TestResourceTypeOf(t *testing.T) {
	cases := []struct {
		raw  string
		want roadmap.ResourceType
		ok   bool
	}{
		{"blog post", roadmap.ResourceArticle, true},
		{"Blog  Post", roadmap.ResourceArticle, true},
		{"YouTube", roadmap.ResourceVideo, true},
		{"docs", roadmap.ResourceDocumentation, true},
		{"interactive game", roadmap.ResourceTutorial, true},
		{"exercise", roadmap.ResourcePractice, true},
		{"xyz-unknown", roadmap.ResourceTutorial, false},
		{"", roadmap.ResourceTutorial, false},
	}
	for _, tc := range cases {
		got, ok := ResourceTypeOf(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ResourceTypeOf(%q)=(%q,%v) want (%q,%v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResourceTypeOfIsIdempotent(t *testing.T) {
	for _, rt := range roadmap.ResourceTypes() {
		got, ok := ResourceTypeOf(string(rt))
		if !ok || got != rt {
			t.Fatalf("%q normalized to %q", rt, got)
		}
		again, _ := ResourceTypeOf(string(got))
		if again != got {
			t.Fatalf("not idempotent for %q", rt)
		}
	}
}

func TestBuildFullRoadmap(t *testing.T) {
	req := roadmaptest.Request("Full Stack Developer")
	r, err := fixedNormalizer().Build(sixModules(nil), req, "u-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(r.Modules) != 6 || r.CareerGoal != "Full Stack Developer" || r.UserID != "u-1" {
		t.Fatalf("roadmap=%+v", r)
	}
	if r.Title != "Full Stack Developer Learning Path" {
		t.Fatalf("title=%q", r.Title)
	}
	if !strings.HasPrefix(r.ID, "roadmap_") {
		t.Fatalf("id=%q", r.ID)
	}
	if r.UpdatedAt == nil || !r.UpdatedAt.Equal(r.CreatedAt) {
		t.Fatalf("timestamps not stamped")
	}
	m := r.Modules[0]
	if len(m.Resources) < 2 || m.Resources[1].Type != roadmap.ResourceDocumentation {
		t.Fatalf("resources=%+v", m.Resources)
	}
	if m.Project == nil || len(m.Project.Deliverables) != 1 || m.Project.Deliverables[0] != "a working binary" {
		t.Fatalf("project=%+v", m.Project)
	}
	if m.Project.EstimatedHours != 12 {
		t.Fatalf("project hours=%d", m.Project.EstimatedHours)
	}
	if m.Assessment != "Ship it" {
		t.Fatalf("assessment=%q", m.Assessment)
	}
	if r.DifficultyProgression != roadmap.DefaultDifficultyProgression {
		t.Fatalf("progression=%q", r.DifficultyProgression)
	}
}

func TestBuildSynthesizesAssessment(t *testing.T) {
	data := sixModules(func(i int, m map[string]any) {
		m["skills_taught"] = []any{"python", "testing"}
		switch i {
		case 0:
			delete(m, "assessment")
		case 1:
			m["assessment"] = genericAssessment
		case 2:
			delete(m, "assessment")
			delete(m, "projects")
		}
	})
	r, err := fixedNormalizer().Build(data, roadmaptest.Request("Dev"), "u")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "Complete build a cli demonstrating mastery of python, testing"
	for i := 0; i < 2; i++ {
		if got := r.Modules[i].Assessment; got != want {
			t.Fatalf("module %d assessment=%q", i, got)
		}
	}
	if got := r.Modules[2].Assessment; got != "Demonstrate understanding of python, testing through practical exercises" {
		t.Fatalf("module 2 assessment=%q", got)
	}
	for _, m := range r.Modules {
		if m.Assessment == genericAssessment || m.Assessment == "" {
			t.Fatalf("generic assessment survived")
		}
	}
}

func TestBuildFillsDefaults(t *testing.T) {
	data := sixModules(func(i int, m map[string]any) {
		delete(m, "id")
		delete(m, "title")
		delete(m, "description")
		delete(m, "estimated_hours")
		delete(m, "projects")
		m["project"] = map[string]any{}
		m["resources"] = []any{
			map[string]any{"type": "xyz-unknown", "estimated_hours": float64(3), "difficulty": "expert"},
			map[string]any{"type": "blog post", "difficulty": "Advanced"},
		}
	})
	delete(data, "estimated_weeks")

	r, err := fixedNormalizer().Build(data, roadmaptest.Request("Tailor"), "u")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.EstimatedWeeks != 16 {
		t.Fatalf("weeks=%d", r.EstimatedWeeks)
	}
	m := r.Modules[3]
	if m.ID != "module-4" || m.Title != "Module 4" || m.Description != "Learning module" || m.EstimatedHours != 30 {
		t.Fatalf("module defaults=%+v", m)
	}
	if m.Project.Title != "Project 4" || m.Project.EstimatedHours != 10 || m.Project.Deliverables[0] != "Project completion" {
		t.Fatalf("project defaults=%+v", m.Project)
	}
	res := m.Resources[0]
	if res.Title != "Resource 1" || res.URL != "#" || res.Type != roadmap.ResourceTutorial || res.Difficulty != roadmap.Beginner || res.Duration != "3 hours" {
		t.Fatalf("resource defaults=%+v", res)
	}
	if m.Resources[1].Type != roadmap.ResourceArticle || m.Resources[1].Difficulty != roadmap.Advanced {
		t.Fatalf("resource coercion=%+v", m.Resources[1])
	}
	if m.Prerequisites == nil || m.LearningObjectives == nil {
		t.Fatalf("lists should default to empty")
	}
}

func TestBuildConstructionFailuresAreGenerationErrors(t *testing.T) {
	cases := map[string]map[string]any{
		"five modules": func() map[string]any {
			d := sixModules(nil)
			d["modules"] = d["modules"].([]any)[:5]
			return d
		}(),
		"one resource": sixModules(func(i int, m map[string]any) {
			if i == 4 {
				m["resources"] = m["resources"].([]any)[:1]
			}
		}),
		"weeks out of tolerance": func() map[string]any {
			d := sixModules(nil)
			d["estimated_weeks"] = float64(40)
			return d
		}(),
		"no modules key": {},
		"non-object resources": sixModules(func(i int, m map[string]any) {
			m["resources"] = []any{"junk", float64(42)}
		}),
		"one real resource among junk": sixModules(func(i int, m map[string]any) {
			if i == 2 {
				m["resources"] = []any{m["resources"].([]any)[0], "junk"}
			}
		}),
		"non-object module": func() map[string]any {
			d := sixModules(nil)
			d["modules"].([]any)[3] = "module four"
			return d
		}(),
	}
	for name, data := range cases {
		_, err := fixedNormalizer().Build(data, roadmaptest.Request("Dev"), "u")
		if provider.CodeOf(err) != provider.CodeGeneration {
			t.Fatalf("%s: code=%q err=%v", name, provider.CodeOf(err), err)
		}
	}
}

func TestRoadmapScenarios(t *testing.T) {
	req := roadmaptest.Request("Full Stack Developer")
	n := fixedNormalizer()

	// Truncated but complete JSON still succeeds.
	text := encode(t, sixModules(nil))
	r, err := n.Roadmap(Completion{Candidates: 1, Text: text, Finish: FinishLength}, req, "u")
	if err != nil || len(r.Modules) != 6 {
		t.Fatalf("truncated valid: r=%v err=%v", r, err)
	}

	// Safety block returns nothing.
	r, err = n.Roadmap(Completion{Candidates: 1, Finish: FinishSafety}, req, "u")
	if r != nil || provider.CodeOf(err) != provider.CodeSafetyBlocked {
		t.Fatalf("safety: r=%v err=%v", r, err)
	}

	// Truncated invalid JSON.
	_, err = n.Roadmap(Completion{Candidates: 1, Text: text[:len(text)/2], Finish: FinishLength}, req, "u")
	if provider.CodeOf(err) != provider.CodeTruncatedResponse {
		t.Fatalf("truncated invalid: err=%v", err)
	}
}

func TestStringListWrapsSingleString(t *testing.T) {
	if got := stringList("one deliverable"); len(got) != 1 || got[0] != "one deliverable" {
		t.Fatalf("got %v", got)
	}
	if got := stringList(nil); got == nil || len(got) != 0 {
		t.Fatalf("got %v", got)
	}
	if got := intOr("12", 1); got != 12 {
		t.Fatalf("intOr=%d", got)
	}
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	got := preview("héllo wörld", 2)
	if got != "hé" {
		t.Fatalf("preview=%q", got)
	}
	if preview("abc", 5) != "abc" {
		t.Fatalf("short input should be unchanged")
	}
}
