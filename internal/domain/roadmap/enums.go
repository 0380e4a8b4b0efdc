package roadmap

import "strings"

type DifficultyLevel string

const (
	Beginner     DifficultyLevel = "beginner"
	Intermediate DifficultyLevel = "intermediate"
	Advanced     DifficultyLevel = "advanced"
)

func (d DifficultyLevel) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	default:
		return false
	}
}

// ParseDifficulty matches case-insensitively; ok is false for anything outside the enum.
func ParseDifficulty(raw string) (DifficultyLevel, bool) {
	d := DifficultyLevel(strings.ToLower(strings.TrimSpace(raw)))
	return d, d.Valid()
}

type ResourceType string

const (
	ResourceVideo         ResourceType = "video"
	ResourceArticle       ResourceType = "article"
	ResourceDocumentation ResourceType = "documentation"
	ResourceCourse        ResourceType = "course"
	ResourceTutorial      ResourceType = "tutorial"
	ResourceBook          ResourceType = "book"
	ResourcePractice      ResourceType = "practice"
)

var resourceTypes = []ResourceType{
	ResourceVideo,
	ResourceArticle,
	ResourceDocumentation,
	ResourceCourse,
	ResourceTutorial,
	ResourceBook,
	ResourcePractice,
}

func ResourceTypes() []ResourceType {
	out := make([]ResourceType, len(resourceTypes))
	copy(out, resourceTypes)
	return out
}

func (t ResourceType) Valid() bool {
	for _, rt := range resourceTypes {
		if rt == t {
			return true
		}
	}
	return false
}
