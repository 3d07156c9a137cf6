// Package screen holds the game's screen state machine. Each variant
// implements Init, Update, Unload and Finish; the Director switches variants
// when the active one reports a non-zero finish code. Drawing lives in the
// host, which reads the state each variant exposes.
package screen
