package core

// CharacterType categorizes cast members; it drives which backdrops mount a
// lane for them.
type CharacterType string

const (
	CharacterAvatar    CharacterType = "avatar"
	CharacterMember    CharacterType = "member"
	CharacterNarrative CharacterType = "character"
)

// Character is an actor participating in an experience. BotID references an
// external bot entity that is not owned by the engine.
type Character struct {
	ID        string        `json:"id" validate:"required"`
	BotID     string        `json:"bot_id,omitempty"`
	Role      string        `json:"role,omitempty"`
	Name      string        `json:"name,omitempty"`
	Type      CharacterType `json:"type,omitempty"`
	Icon      string        `json:"icon,omitempty"`
	URL       string        `json:"url,omitempty"`
	Animation *Animation    `json:"animation,omitempty"`
}

// IsMember reports whether the character stands for the member themself.
func (c *Character) IsMember() bool { return c.Type == CharacterMember }

// IsAvatar reports whether the character is the member's avatar.
func (c *Character) IsAvatar() bool { return c.Type == CharacterAvatar }

// Clone returns an independent copy of the character.
func (c *Character) Clone() *Character {
	cp := *c
	if c.Animation != nil {
		a := *c.Animation
		cp.Animation = &a
	}
	return &cp
}
