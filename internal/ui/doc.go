// Package ui contains the interactive terminal picker used when a
// playback device cannot be resolved from configuration. It is an
// alternative to the plain numbered prompt, opted into with --tui.
package ui
