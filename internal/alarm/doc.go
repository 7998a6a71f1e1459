// Package alarm implements the scheduling core: parsing the target
// wall-clock time, waiting for its next occurrence, resolving a
// playback device, and invoking playback with bounded retry. The Loop
// type composes these into one cycle per run.
package alarm
