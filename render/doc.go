// Package render contains building blocks shared by renderer
// implementations. Board mirrors which surfaces are mounted and whether they
// are shown, so a renderer can answer core.Surfaces queries without a round
// trip to the device that actually draws them.
package render
