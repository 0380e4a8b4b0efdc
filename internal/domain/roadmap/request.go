package roadmap

import "strings"

type Request struct {
	UserGoal        string            `json:"user_goal"`
	UserSkills      []SkillAssessment `json:"user_skills"`
	ExperienceLevel DifficultyLevel   `json:"experience_level,omitempty"`
	Preferences     map[string]any    `json:"preferences,omitempty"`
}

// Normalize trims the goal and applies the beginner default. It does not validate.
func (r *Request) Normalize() {
	r.UserGoal = strings.TrimSpace(r.UserGoal)
	if strings.TrimSpace(string(r.ExperienceLevel)) == "" {
		r.ExperienceLevel = Beginner
	} else if d, ok := ParseDifficulty(string(r.ExperienceLevel)); ok {
		r.ExperienceLevel = d
	}
}

func (r *Request) Validate() error {
	if r == nil {
		return invalid("request", "request is required")
	}
	if strings.TrimSpace(r.UserGoal) == "" {
		return invalid("user_goal", "career goal cannot be empty")
	}
	if len(r.UserSkills) == 0 {
		return invalid("user_skills", "at least one skill assessment is required")
	}
	for _, s := range r.UserSkills {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if r.ExperienceLevel != "" && !r.ExperienceLevel.Valid() {
		return invalid("experience_level", "unknown experience level %q", r.ExperienceLevel)
	}
	return nil
}

type UpdateRequest struct {
	UserPrompt      string   `json:"user_prompt"`
	ExistingRoadmap *Roadmap `json:"existing_roadmap,omitempty"`
}

func (u *UpdateRequest) Validate() error {
	if u == nil {
		return invalid("update", "update request is required")
	}
	u.UserPrompt = strings.TrimSpace(u.UserPrompt)
	if u.UserPrompt == "" {
		return invalid("user_prompt", "update prompt cannot be empty")
	}
	if u.ExistingRoadmap != nil {
		return u.ExistingRoadmap.Validate()
	}
	return nil
}

type Response struct {
	Success  bool           `json:"success"`
	Roadmap  *Roadmap       `json:"roadmap"`
	Metadata map[string]any `json:"metadata"`
}

// ProgressUpdate carries the learner-side fields; nil means unchanged.
type ProgressUpdate struct {
	CurrentModule      *int `json:"current_module,omitempty"`
	ProgressPercentage *int `json:"progress_percentage,omitempty"`
}

func (p ProgressUpdate) Validate() error {
	if p.CurrentModule == nil && p.ProgressPercentage == nil {
		return invalid("progress", "nothing to update")
	}
	if p.CurrentModule != nil && (*p.CurrentModule < 0 || *p.CurrentModule >= ModuleCount) {
		return invalid("current_module", "must be between 0 and %d (got %d)", ModuleCount-1, *p.CurrentModule)
	}
	if p.ProgressPercentage != nil && (*p.ProgressPercentage < 0 || *p.ProgressPercentage > 100) {
		return invalid("progress_percentage", "must be between 0 and 100 (got %d)", *p.ProgressPercentage)
	}
	return nil
}

// Apply mutates r in place after Validate has passed.
func (p ProgressUpdate) Apply(r *Roadmap) {
	if p.CurrentModule != nil {
		r.CurrentModule = *p.CurrentModule
	}
	if p.ProgressPercentage != nil {
		r.ProgressPercentage = *p.ProgressPercentage
	}
}
