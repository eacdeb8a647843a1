// Package viz renders simulations in the terminal.
//
//   - [Canvas]: Braille pixel canvas, 2x4 dots per cell
//   - [Model]: Bubble Tea live view fed by a [Stream] output
//   - [Plot], [PlotMany]: asciigraph line charts for stored runs
//   - [Summary]: lipgloss panel for end-of-run reports
//
// # Key Bindings
//
//	Space - Pause/Resume (the simulation waits while paused)
//	Q     - Quit
package viz
