// Package session houses the in-memory store of live playback sessions.
//
// The store is generic over the session type so the engine can keep its
// concrete Session in the engine package without an import cycle. Add
// additional backends in sub-packages without changing calling code; only
// the wiring layer decides which implementation to instantiate.
package session
