// Package prompt builds the system and task prompts shared by every model backend.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
)

const systemPrompt = `You design learning roadmaps for every professional field, not only software.
Fields you cover include engineering (civil, mechanical, electrical, mining, chemical), business and finance, skilled trades (carpentry, tailoring, electrical work, welding), creative work (design, writing, photography), professional services (law, consulting, real estate), the sciences, healthcare and education.

Read the learner's career goal carefully and work out which field it really belongs to. Only treat it as a programming goal when it explicitly is one.
Recommend resources that practitioners of that field actually use: universities, trade schools, apprenticeships, professional bodies, certifications, textbooks and field-specific platforms.
Always answer with a single JSON object.`

// SystemPrompt is the persona shared by all backends.
func SystemPrompt() string { return systemPrompt }

type Options struct {
	// TopSkills limits how many skills are listed, highest score first. Zero means 5.
	TopSkills int
	// ShowLevels renders each skill's self-assessed level next to its score.
	ShowLevels bool
	// SingleProject asks for a "project" object per module instead of a "projects" list.
	SingleProject bool
}

const fieldGuidance = `Match the path to the real field of the goal:
- trades: hands-on skills, apprenticeships, licensing and certifications
- business: finance, strategy, management concepts and case studies
- software and technology: programming, tooling and engineering practice
- engineering: principles, safety standards and technical skills
- creative work: craft, portfolio building and industry standards
- professional services: formal education, certifications and ethics
- anything else: the knowledge and skills the profession actually requires`

// Task renders the request-specific prompt including the output contract.
func Task(req *roadmap.Request, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a 6-module learning roadmap for the career goal %q at %s level.\n\n", req.UserGoal, experience(req))

	b.WriteString("Current skills:\n")
	b.WriteString(SkillsSummary(req.UserSkills, opts.TopSkills, opts.ShowLevels))
	fmt.Fprintf(&b, "\nStarting point: %s\n\n", GapSummary(req.UserSkills))

	if changes, ok := req.Preferences["modifications"].(string); ok && strings.TrimSpace(changes) != "" {
		fmt.Fprintf(&b, "Requested changes to the previous roadmap: %s\n", strings.TrimSpace(changes))
		if prev, ok := req.Preferences["existing_roadmap"]; ok {
			if raw, err := json.Marshal(prev); err == nil {
				fmt.Fprintf(&b, "Previous roadmap:\n%s\n", raw)
			}
		}
		b.WriteString("\n")
	}
	if other := otherPreferences(req.Preferences); other != "" {
		fmt.Fprintf(&b, "Learner preferences: %s\n\n", other)
	}

	b.WriteString(fieldGuidance)
	b.WriteString("\n\nRequirements:\n")
	b.WriteString("- exactly 6 modules, ordered from foundations to mastery\n")
	b.WriteString("- 2 to 4 resources per module, each with title, type, url, duration, difficulty and why_recommended\n")
	b.WriteString("- resource type is one of: " + resourceTypeList() + "\n")
	b.WriteString("- difficulty is one of: beginner, intermediate, advanced\n")
	b.WriteString("- a hands-on project per module wherever the field allows it\n")
	b.WriteString("- prerequisites list earlier module ids and form a valid dependency chain\n")
	b.WriteString("- a specific, measurable assessment for each module\n")
	fmt.Fprintf(&b, "- estimated_weeks consistent with the total hours at about %d hours per week\n", roadmap.HoursPerWeek)
	b.WriteString("\nRespond with JSON only. No prose, no markdown, no code fences. Use this shape:\n")
	b.WriteString(exampleShape(opts.SingleProject))
	return b.String()
}

func experience(req *roadmap.Request) roadmap.DifficultyLevel {
	if req.ExperienceLevel == "" {
		return roadmap.Beginner
	}
	return req.ExperienceLevel
}

// SkillsSummary lists up to n skills by descending score; ties keep input order.
func SkillsSummary(skills []roadmap.SkillAssessment, n int, withLevels bool) string {
	if n <= 0 {
		n = 5
	}
	sorted := make([]roadmap.SkillAssessment, len(skills))
	copy(sorted, skills)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	var b strings.Builder
	for _, s := range sorted {
		if withLevels {
			fmt.Fprintf(&b, "- %s: %d/10 (%s)\n", s.Skill, s.Score, s.Level)
		} else {
			fmt.Fprintf(&b, "- %s: %d/10\n", s.Skill, s.Score)
		}
	}
	return b.String()
}

// GapSummary names up to two strong skills (score 7+) or says the learner is building a foundation.
func GapSummary(skills []roadmap.SkillAssessment) string {
	var strong []string
	for _, s := range skills {
		if s.Score >= 7 {
			strong = append(strong, s.Skill)
		}
		if len(strong) == 2 {
			break
		}
	}
	if len(strong) == 0 {
		return "building foundation"
	}
	return "strengths in " + strings.Join(strong, " and ")
}

func otherPreferences(prefs map[string]any) string {
	if len(prefs) == 0 {
		return ""
	}
	rest := make(map[string]any, len(prefs))
	for k, v := range prefs {
		if k == "modifications" || k == "existing_roadmap" {
			continue
		}
		rest[k] = v
	}
	if len(rest) == 0 {
		return ""
	}
	raw, err := json.Marshal(rest)
	if err != nil {
		return ""
	}
	return string(raw)
}

func resourceTypeList() string {
	types := roadmap.ResourceTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func exampleShape(singleProject bool) string {
	project := `"projects": [{"title": "Concrete project", "description": "What to produce and why", "deliverables": ["deliverable 1", "deliverable 2"], "estimated_hours": 10}]`
	if singleProject {
		project = `"project": {"title": "Concrete project", "description": "What to produce and why", "deliverables": ["deliverable 1", "deliverable 2"], "estimated_hours": 10}`
	}
	return `{
  "title": "Roadmap title",
  "estimated_weeks": 18,
  "difficulty_progression": "beginner -> intermediate -> advanced",
  "modules": [
    {
      "id": "module-1",
      "title": "Module title",
      "description": "What the learner will achieve",
      "estimated_hours": 30,
      "skills_taught": ["skill 1", "skill 2"],
      "learning_objectives": ["objective 1", "objective 2"],
      "prerequisites": [],
      "resources": [
        {"title": "Real resource name", "type": "course", "url": "https://...", "duration": "6 hours", "difficulty": "beginner", "why_recommended": "Why it fits"},
        {"title": "Another real resource", "type": "book", "url": "https://...", "duration": "2 weeks", "difficulty": "beginner", "why_recommended": "Why it fits"}
      ],
      ` + project + `,
      "assessment": "Specific, measurable completion criterion"
    }
  ]
}
`
}
