package testutil

import (
	"github.com/hupe1980/playback/core"
)

// ExperienceBuilder helps construct experiences and the matching catalog
// entry and manifest.
// Example:
//
//	b := NewExperienceBuilder(id).Skippable().Cast("c1", core.CharacterNarrative).Scene("s1", core.BackdropChat)
//	exp, manifest := b.Build(), b.Manifest()
type ExperienceBuilder struct {
	summary    core.ExperienceSummary
	cast       []core.Character
	navigation []core.SceneNode
	events     []core.Event
	location   string
}

// NewExperienceBuilder creates a builder for the experience with id.
func NewExperienceBuilder(id string) *ExperienceBuilder {
	return &ExperienceBuilder{summary: core.ExperienceSummary{ID: id, Name: "experience-" + id}}
}

// Name sets the experience name (chainable).
func (b *ExperienceBuilder) Name(n string) *ExperienceBuilder { b.summary.Name = n; return b }

// Title sets the experience title (chainable).
func (b *ExperienceBuilder) Title(t string) *ExperienceBuilder { b.summary.Title = t; return b }

// Skippable marks the experience skippable (chainable).
func (b *ExperienceBuilder) Skippable() *ExperienceBuilder { b.summary.Skippable = true; return b }

// Autoplay marks the experience autoplaying (chainable).
func (b *ExperienceBuilder) Autoplay() *ExperienceBuilder { b.summary.Autoplay = true; return b }

// System flags the catalog entry as a system experience (chainable).
func (b *ExperienceBuilder) System() *ExperienceBuilder { b.summary.System = true; return b }

// Cast adds a cast member (chainable).
func (b *ExperienceBuilder) Cast(id string, t core.CharacterType) *ExperienceBuilder {
	b.cast = append(b.cast, core.Character{ID: id, Type: t, Name: id})
	return b
}

// Scene adds a navigation node (chainable).
func (b *ExperienceBuilder) Scene(id string, backdrop core.Backdrop) *ExperienceBuilder {
	b.navigation = append(b.navigation, core.SceneNode{ID: id, Title: id, Backdrop: backdrop})
	return b
}

// Events appends events to the experience (chainable).
func (b *ExperienceBuilder) Events(evs ...core.Event) *ExperienceBuilder {
	b.events = append(b.events, evs...)
	return b
}

// Location sets the location pointer (chainable).
func (b *ExperienceBuilder) Location(sceneID string) *ExperienceBuilder {
	b.location = sceneID
	return b
}

// Summary returns the catalog entry.
func (b *ExperienceBuilder) Summary() core.ExperienceSummary { return b.summary }

// Manifest returns a success-shaped manifest with the cast and navigation.
// The cast is non-nil even when no member was added.
func (b *ExperienceBuilder) Manifest() core.Manifest {
	return core.Manifest{
		Status:     core.Succeeded(),
		Cast:       append([]core.Character{}, b.cast...),
		Navigation: append([]core.SceneNode{}, b.navigation...),
	}
}

// Build returns the assembled aggregate.
func (b *ExperienceBuilder) Build() *core.Experience {
	exp := core.NewExperience(b.summary)
	exp.ApplyManifest(b.Manifest())
	exp.MergeEvents(b.events)
	exp.Location = b.location
	return exp
}
