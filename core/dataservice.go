package core

import "context"

// Status is embedded in every data-service response. Transport and decoding
// failures are normalized into Success == false by the DataService
// implementation; callers check Success instead of relying on errors.
type Status struct {
	Success bool   `json:"-"`
	Message string `json:"-"`
}

// Failed builds a failure-shaped status carrying a diagnostic message.
func Failed(msg string) Status { return Status{Message: msg} }

// Succeeded builds a success-shaped status.
func Succeeded() Status { return Status{Success: true} }

// Catalog lists every experience the data service exposes.
type Catalog struct {
	Status
	Experiences []ExperienceSummary `json:"experiences" validate:"dive"`
}

// Manifest holds the cast and navigation of an experience. A nil Cast means
// the manifest is missing; an empty Cast is valid.
type Manifest struct {
	Status
	Cast       []Character `json:"cast" validate:"required,dive"`
	Navigation []SceneNode `json:"navigation" validate:"dive"`
}

// Location points at a scene of the navigation graph.
type Location struct {
	SceneID string `json:"sceneId"`
}

// EventBatch is one response of the event endpoint.
type EventBatch struct {
	Status
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Purpose   string    `json:"purpose,omitempty"`
	Autoplay  *bool     `json:"autoplay,omitempty"`
	Skippable *bool     `json:"skippable,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Events    []Event   `json:"events" validate:"dive"`
}

// EndResult acknowledges the end of an experience.
type EndResult struct {
	Status
}

// DataService is the request/response contract the engine consumes. Calls
// are never issued concurrently for the same session.
type DataService interface {
	// Experiences lists the catalog.
	Experiences(ctx context.Context) Catalog
	// Manifest fetches cast and navigation for an experience.
	Manifest(ctx context.Context, experienceID string) Manifest
	// Events requests the next event batch, seeded with member input (may be nil).
	Events(ctx context.Context, experienceID string, memberInput map[string]any) EventBatch
	// End requests server-side termination of an experience.
	End(ctx context.Context, experienceID string) EndResult
}
