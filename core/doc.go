// Package core provides the foundational domain types and collaborator
// contracts used by the playback engine. It defines:
//
//   - Experiences (the aggregate a playback session owns) and their cast,
//     navigation graph and cumulative event history
//   - Events (immutable script records delivered by the data service)
//   - Actions (compiled, orderable visual transitions consumed once)
//   - Renderer contracts (surfaces, transitions, gestures, backstage, chrome)
//   - The DataService contract and its failure-shaped responses
//   - The sentinel error taxonomy shared by all engine components
//
// The package keeps implementation concerns (HTTP, websockets, compilation,
// sequencing) out of scope, exposing small interfaces so renderers and data
// backends can be swapped without touching the engine.
package core
