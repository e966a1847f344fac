package core

// ExperienceSummary is the catalog entry the registry holds for every known
// experience.
type ExperienceSummary struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Skippable   bool   `json:"skippable,omitempty"`
	Autoplay    bool   `json:"autoplay,omitempty"`
	System      bool   `json:"system,omitempty"`
}

// Experience is the aggregate a playback session owns between Start and End.
// Only the controller mutates it structurally; the compiler may write role and
// name back onto cast members. Experience is not safe for concurrent use.
//
// Contract:
//   - Events is the id-deduplicated union of every batch received so far
//   - MergeEvents replaces same-id records in place and appends new ids in
//     batch order
//   - Clone performs deep copies of slices and cast records
type Experience struct {
	ID           string       `json:"id"`
	Name         string       `json:"name,omitempty"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	Purpose      string       `json:"purpose,omitempty"`
	Skippable    bool         `json:"skippable"`
	Autoplay     bool         `json:"autoplay"`
	Cast         []*Character `json:"cast"`
	Navigation   []SceneNode  `json:"navigation"`
	Events       []Event      `json:"events"`
	Location     string       `json:"location,omitempty"`
	CurrentScene string       `json:"currentScene,omitempty"`
}

// NewExperience seeds an aggregate from its catalog entry.
func NewExperience(s ExperienceSummary) *Experience {
	return &Experience{
		ID:          s.ID,
		Name:        s.Name,
		Title:       s.Title,
		Description: s.Description,
		Skippable:   s.Skippable,
		Autoplay:    s.Autoplay,
		Cast:        []*Character{},
		Navigation:  []SceneNode{},
		Events:      []Event{},
	}
}

// Summary returns the catalog view of the experience.
func (x *Experience) Summary() ExperienceSummary {
	return ExperienceSummary{
		ID:          x.ID,
		Name:        x.Name,
		Title:       x.Title,
		Description: x.Description,
		Skippable:   x.Skippable,
		Autoplay:    x.Autoplay,
	}
}

// ApplyManifest replaces cast and navigation with the manifest contents.
func (x *Experience) ApplyManifest(m Manifest) {
	x.Cast = make([]*Character, 0, len(m.Cast))
	for i := range m.Cast {
		x.Cast = append(x.Cast, m.Cast[i].Clone())
	}
	x.Navigation = append([]SceneNode{}, m.Navigation...)
}

// ApplyBatch merges batch-level metadata and events into the aggregate.
func (x *Experience) ApplyBatch(b EventBatch) {
	if b.Name != "" {
		x.Name = b.Name
	}
	if b.Purpose != "" {
		x.Purpose = b.Purpose
	}
	if b.Skippable != nil {
		x.Skippable = *b.Skippable
	}
	if b.Autoplay != nil {
		x.Autoplay = *b.Autoplay
	}
	if b.Location != nil && b.Location.SceneID != "" {
		x.Location = b.Location.SceneID
	}
	x.MergeEvents(b.Events)
}

// MergeEvents folds batch into Events keyed by id.
func (x *Experience) MergeEvents(batch []Event) {
	index := make(map[string]int, len(x.Events))
	for i, ev := range x.Events {
		index[ev.ID] = i
	}
	for _, ev := range batch {
		if i, ok := index[ev.ID]; ok {
			x.Events[i] = ev
			continue
		}
		index[ev.ID] = len(x.Events)
		x.Events = append(x.Events, ev)
	}
}

// FindCharacter returns the live cast record for id.
func (x *Experience) FindCharacter(id string) (*Character, bool) {
	for _, c := range x.Cast {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// FindScene returns the navigation node for id.
func (x *Experience) FindScene(id string) (SceneNode, bool) {
	for _, n := range x.Navigation {
		if n.ID == id {
			return n, true
		}
	}
	return SceneNode{}, false
}

// EnterScene positions playback on sceneID. The location pointer follows
// the current scene so that later batches without scene data resolve to the
// scene that was played last.
func (x *Experience) EnterScene(sceneID string) {
	if sceneID == "" {
		return
	}
	x.CurrentScene = sceneID
	x.Location = sceneID
}

// SceneID resolves the scene playback is positioned on: the location
// pointer, the current scene, or the first navigation node. The location
// pointer wins because batch metadata may move it ahead of the scene played
// last.
func (x *Experience) SceneID() string {
	switch {
	case x.Location != "":
		return x.Location
	case x.CurrentScene != "":
		return x.CurrentScene
	case len(x.Navigation) > 0:
		return x.Navigation[0].ID
	default:
		return ""
	}
}

// Clone returns a deep copy safe for independent mutation.
func (x *Experience) Clone() *Experience {
	cp := *x
	cp.Cast = make([]*Character, len(x.Cast))
	for i, c := range x.Cast {
		cp.Cast[i] = c.Clone()
	}
	cp.Navigation = append([]SceneNode{}, x.Navigation...)
	cp.Events = append([]Event{}, x.Events...)
	return &cp
}
