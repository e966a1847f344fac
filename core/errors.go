package core

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors by how callers are expected to react.
type Kind string

const (
	// KindValidation errors are returned synchronously and must be handled by the caller.
	KindValidation Kind = "validation"
	// KindData errors are fatal to the current Start/Play; the experience stays
	// at its last good state.
	KindData Kind = "data"
	// KindAnimation errors never escape the sequencer; the controller reports
	// them as ErrPlaybackFailed.
	KindAnimation Kind = "animation"
	// KindUnknown is anything outside the taxonomy.
	KindUnknown Kind = "unknown"
)

type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func newError(kind Kind, msg string) error { return &kindError{kind: kind, msg: msg} }

var (
	ErrInvalidIdentifier         = newError(KindValidation, "invalid experience identifier")
	ErrNotFound                  = newError(KindValidation, "experience not found")
	ErrSceneNotFound             = newError(KindValidation, "scene not found")
	ErrNotSkippable              = newError(KindValidation, "experience is not skippable")
	ErrUnsupportedStageType      = newError(KindValidation, "unsupported stage type")
	ErrUnsupportedStageDirection = newError(KindValidation, "unsupported stage direction")
	ErrCharacterNotFound         = newError(KindValidation, "character not found in cast")
	ErrNoActiveExperience        = newError(KindValidation, "no active experience")

	ErrEmptyEventBatch     = newError(KindData, "empty event batch")
	ErrManifestMissing     = newError(KindData, "manifest missing cast")
	ErrEndFailed           = newError(KindData, "end of experience rejected")
	ErrRegistryUnavailable = newError(KindData, "experience catalog unavailable")

	ErrDialogContainerMissing = newError(KindAnimation, "dialog container missing")
	ErrPlaybackFailed         = newError(KindAnimation, "playback failed")
)

// KindOf returns the taxonomy kind of the first sentinel found in err's chain.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}

// Errorf wraps sentinel with formatted context so errors.Is keeps matching.
func Errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
