// Package sequencer plays compiled animation actions one at a time.
//
// Each action is resolved against the renderer's surfaces, guarded for
// idempotence, transitioned, and awaited. Dismissable transitions race their
// natural completion against a one-shot dismiss token armed on the user's
// gestures; halting actions additionally wait for an explicit continue
// signal unless they were dismissed. A terminal end marker waits for
// continue and stops the run, reporting the boundary it crossed.
//
// Appearing a shown lane or affordance again is a no-op. Dialog and
// moderator surfaces are the exception: a new line or prompt retracts the
// previous one and transitions in again. Hiding a lane also hides its
// dialog.
//
// The sequencer never mutates the experience aggregate and never rolls back
// visual state: an error aborts the run with Result.OK == false.
package sequencer
