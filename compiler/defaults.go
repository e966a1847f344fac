package compiler

import "github.com/hupe1980/playback/core"

// characterAnimation is the entrance used when neither the event nor the
// cast record specify one.
func characterAnimation(b core.Backdrop) *core.Animation {
	if b == core.BackdropFull {
		return &core.Animation{Class: "slide-in", Duration: "1s", Direction: "normal", IterationCount: "1"}
	}
	return &core.Animation{Class: "fade-in", Duration: "500ms", Direction: "normal", IterationCount: "1"}
}

func dialogAnimation() *core.Animation {
	return &core.Animation{Class: "fade-in", Duration: "500ms", Direction: "normal", IterationCount: "1"}
}

func moderatorAnimation() *core.Animation {
	return &core.Animation{Class: "fade-in", Duration: "300ms", Direction: "normal", IterationCount: "1"}
}

func firstAnimation(candidates ...*core.Animation) *core.Animation {
	for _, a := range candidates {
		if a != nil {
			cp := *a
			return &cp
		}
	}
	return nil
}
