package roadmap_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap/roadmaptest"
)

func TestNewRoadmapRequiresExactlySixModules(t *testing.T) {
	for _, n := range []int{0, 1, 5, 7, 12} {
		r := roadmaptest.Roadmap("Welder")
		modules := make([]roadmap.Module, n)
		for i := range modules {
			modules[i] = roadmaptest.Module(i)
		}
		r.Modules = modules
		r.EstimatedWeeks = roadmap.CalculatedWeeks(modules)
		_, err := roadmap.NewRoadmap(*r)
		var ve *roadmap.ValidationError
		if !errors.As(err, &ve) || ve.Field != "modules" {
			t.Fatalf("n=%d: expected modules validation error, got %v", n, err)
		}
	}
	if _, err := roadmap.NewRoadmap(*roadmaptest.Roadmap("Welder")); err != nil {
		t.Fatalf("valid roadmap rejected: %v", err)
	}
}

func TestNewModuleRequiresTwoResources(t *testing.T) {
	m := roadmaptest.Module(0)
	m.Resources = m.Resources[:1]
	if _, err := roadmap.NewModule(m); err == nil {
		t.Fatalf("expected error for one resource")
	}
	m = roadmaptest.Module(0)
	m.EstimatedHours = 0
	if _, err := roadmap.NewModule(m); err == nil {
		t.Fatalf("expected error for zero hours")
	}
	m = roadmaptest.Module(0)
	m.Prerequisites = nil
	got, err := roadmap.NewModule(m)
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	if got.Prerequisites == nil {
		t.Fatalf("prerequisites should default to an empty list")
	}
}

func TestEstimatedWeeksTolerance(t *testing.T) {
	// 6 x 30h = 180h -> 18 calculated weeks.
	cases := []struct {
		weeks int
		ok    bool
	}{
		{14, true},
		{22, true},
		{13, false},
		{23, false},
		{0, false},
		{105, false},
	}
	for _, tc := range cases {
		r := roadmaptest.Roadmap("Chef")
		r.EstimatedWeeks = tc.weeks
		err := r.Validate()
		if tc.ok && err != nil {
			t.Fatalf("weeks=%d: unexpected error %v", tc.weeks, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("weeks=%d: expected error", tc.weeks)
		}
	}
}

func TestCalculatedWeeksRoundsUpWithFloorOfOne(t *testing.T) {
	mods := []roadmap.Module{{EstimatedHours: 1}}
	if got := roadmap.CalculatedWeeks(mods); got != 1 {
		t.Fatalf("got %d", got)
	}
	mods = []roadmap.Module{{EstimatedHours: 25}, {EstimatedHours: 6}}
	if got := roadmap.CalculatedWeeks(mods); got != 4 {
		t.Fatalf("got %d", got)
	}
	if got := roadmap.CalculatedWeeks(nil); got != 1 {
		t.Fatalf("got %d", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := roadmaptest.Roadmap("Electrician")
	updated := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	in.UpdatedAt = &updated
	in.CurrentModule = 2
	in.ProgressPercentage = 40

	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, err := roadmap.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestDecodeRejectsInvariantViolations(t *testing.T) {
	r := roadmaptest.Roadmap("Nurse")
	r.Modules = r.Modules[:5]
	b, _ := json.Marshal(r)
	if _, err := roadmap.Decode(b); !roadmap.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequestValidate(t *testing.T) {
	req := roadmaptest.Request("  Full Stack Developer  ")
	req.ExperienceLevel = ""
	req.Normalize()
	if req.UserGoal != "Full Stack Developer" || req.ExperienceLevel != roadmap.Beginner {
		t.Fatalf("normalize: %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := roadmaptest.Request("Pilot")
	bad.UserSkills[0].Score = 11
	if err := bad.Validate(); !roadmap.IsValidation(err) {
		t.Fatalf("expected score error, got %v", err)
	}
	bad = roadmaptest.Request("   ")
	bad.Normalize()
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "user_goal") {
		t.Fatalf("expected goal error, got %v", err)
	}
	bad = roadmaptest.Request("Pilot")
	bad.UserSkills = nil
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected skills error")
	}
}

func TestUpdateRequestValidate(t *testing.T) {
	u := &roadmap.UpdateRequest{UserPrompt: "  "}
	if err := u.Validate(); err == nil {
		t.Fatalf("expected empty prompt error")
	}
	u = &roadmap.UpdateRequest{UserPrompt: " add more welding practice "}
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if u.UserPrompt != "add more welding practice" {
		t.Fatalf("prompt=%q", u.UserPrompt)
	}
}

func TestProgressUpdate(t *testing.T) {
	five, sixty, six := 5, 60, 6
	r := roadmaptest.Roadmap("Baker")
	p := roadmap.ProgressUpdate{CurrentModule: &five, ProgressPercentage: &sixty}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	p.Apply(r)
	if r.CurrentModule != 5 || r.ProgressPercentage != 60 {
		t.Fatalf("apply: %+v", r)
	}
	if err := (roadmap.ProgressUpdate{CurrentModule: &six}).Validate(); err == nil {
		t.Fatalf("expected out-of-range module error")
	}
	if err := (roadmap.ProgressUpdate{}).Validate(); err == nil {
		t.Fatalf("expected empty update error")
	}
}

func TestNewIDFormat(t *testing.T) {
	id := roadmap.NewID()
	if !strings.HasPrefix(id, "roadmap_") || len(id) != len("roadmap_")+8 {
		t.Fatalf("id=%q", id)
	}
	if id == roadmap.NewID() {
		t.Fatalf("ids should differ")
	}
}
