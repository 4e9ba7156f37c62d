// Package viz draws wave fields in the terminal.
//
//   - [Player]: Bubble Tea model that plays rendered frames with half-block cells
//   - [Preview]: static half-block image of a single frame
//   - [Canvas]: Braille pixel canvas used for ray and outline plots
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step one frame back / forward
//	+ -   - Faster / slower
//	R     - Restart from the first frame
//	T     - Cycle color themes
//	Q     - Quit
//
// Playback stops on the last frame.
package viz
