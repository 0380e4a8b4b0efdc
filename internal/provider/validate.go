package provider

import "github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"

// ValidateRequest is the shared precondition check every backend runs before calling out.
func ValidateRequest(req *roadmap.Request) error {
	if req == nil {
		return roadmap.NewValidationError("request", "request is required")
	}
	return req.Validate()
}
