package normalize

import (
	"strings"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
)

// resourceSynonyms maps lowercase free text onto the resource enum.
var resourceSynonyms = map[string]roadmap.ResourceType{
	"video":   roadmap.ResourceVideo,
	"videos":  roadmap.ResourceVideo,
	"youtube": roadmap.ResourceVideo,
	"webinar": roadmap.ResourceVideo,
	"lecture": roadmap.ResourceVideo,
	"podcast": roadmap.ResourceVideo,

	"article":   roadmap.ResourceArticle,
	"articles":  roadmap.ResourceArticle,
	"blog":      roadmap.ResourceArticle,
	"blogs":     roadmap.ResourceArticle,
	"blog post": roadmap.ResourceArticle,
	"paper":     roadmap.ResourceArticle,

	"documentation": roadmap.ResourceDocumentation,
	"doc":           roadmap.ResourceDocumentation,
	"docs":          roadmap.ResourceDocumentation,
	"reference":     roadmap.ResourceDocumentation,
	"standard":      roadmap.ResourceDocumentation,

	"course":        roadmap.ResourceCourse,
	"courses":       roadmap.ResourceCourse,
	"mooc":          roadmap.ResourceCourse,
	"certification": roadmap.ResourceCourse,

	"tutorial":         roadmap.ResourceTutorial,
	"tutorials":        roadmap.ResourceTutorial,
	"tut":              roadmap.ResourceTutorial,
	"interactive":      roadmap.ResourceTutorial,
	"game":             roadmap.ResourceTutorial,
	"interactive game": roadmap.ResourceTutorial,
	"guide":            roadmap.ResourceTutorial,

	"book":     roadmap.ResourceBook,
	"books":    roadmap.ResourceBook,
	"textbook": roadmap.ResourceBook,
	"ebook":    roadmap.ResourceBook,

	"practice":       roadmap.ResourcePractice,
	"practices":      roadmap.ResourcePractice,
	"project":        roadmap.ResourcePractice,
	"exercise":       roadmap.ResourcePractice,
	"exercises":      roadmap.ResourcePractice,
	"workshop":       roadmap.ResourcePractice,
	"lab":            roadmap.ResourcePractice,
	"apprenticeship": roadmap.ResourcePractice,
}

// ResourceTypeOf coerces raw into the enum. ok is false when the tutorial fallback was used.
func ResourceTypeOf(raw string) (roadmap.ResourceType, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if t, ok := resourceSynonyms[key]; ok {
		return t, true
	}
	if t := roadmap.ResourceType(key); t.Valid() {
		return t, true
	}
	return roadmap.ResourceTutorial, false
}
