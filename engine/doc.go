// Package engine implements the playback controller.
//
// A Session drives one renderer through the lifecycle of an experience:
//
//	Idle → Loading → WelcomeDisplayed → Playing → WaitingForInput → Playing … → Ended
//
// # Operations
//
// Start validates the experience id against the catalog, shows the welcome
// surface, fetches the manifest and preloads the first event batch. Play
// consumes that preloaded batch first; every later call fetches the next
// batch from the data service, seeded with the member's input. Before a
// batch is compiled the backdrop of its scene is prepared; the compiled
// actions are then handed to the sequencer. Scene end markers chain into
// the next scene's batch inside the same Play call, and the experience end
// marker ends the experience.
//
// SubmitInput reads the member's answer through the renderer and plays it
// forward; its errors are logged rather than returned, as it is driven by
// user interface events. Skip repositions playback on another scene of a
// skippable experience. End asks the data service to terminate the
// experience and, only once acknowledged, clears every visual it left
// behind. End is idempotent.
//
// # Concurrency
//
// A Session serializes its operations. End is the one operation that
// interrupts an in-flight Play, by cancelling its context; the interrupted
// Play returns an error wrapping core.ErrPlaybackFailed and context.Canceled.
// No timeouts are imposed here; callers pass deadlines through ctx.
//
// # Engine
//
// An Engine shares the registry, data service, compiler and callbacks
// between the sessions it opens, and tracks them by id:
//
//	e := engine.New(ds, func(o *engine.Options) { o.Logger = logger })
//	if err := e.LoadCatalog(ctx); err != nil {
//	    return err
//	}
//	s := e.Open(renderer)
//	defer e.Close(ctx, s.ID())
//
// # Callbacks
//
// Lifecycle callbacks run synchronously at BeforePlay, AfterPlay, OnError,
// OnStateChange and OnEnd. A BeforePlay callback returning an error aborts
// the Play; errors from the others are logged.
package engine
