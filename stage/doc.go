// Package stage implements the backdrop state machine.
//
// A Manager moves between Uninitialized and one of the chat, interface or
// full backdrops. Preparing a backdrop mounts the cast lanes into the
// container that backdrop uses, resets the moderator and reveals the stage.
// Re-preparing the backdrop that is already mounted does nothing.
package stage
