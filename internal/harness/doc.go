// Package harness runs a GUI test scenario end to end.
//
// A run is a fixed sequence of numbered steps:
//
//  1. build the application
//  2. launch it detached in its own process group
//  3. wait for its window, then focus and capture it
//  4. one step per scenario script entry (click, key, type, sort ...)
//  5. capture the final state
//  6. produce a video, stitched or recorded live
//  7. shut the application down
//
// Every collaborator that touches the outside world (build tool, window
// registry, input injection, screenshots, recorder) is reached through
// Deps, so tests drive the whole sequence with fakes.
//
// # Failure model
//
// Build failure, window timeout, input driver errors, panics and context
// cancellation end the run with exit code 1. Focus, screenshot and video
// failures are reported and the run continues. On every path the
// application and the recorder are stopped before Run returns.
//
// The human-readable step log goes to Deps.Stdout. Result.Trace carries
// the same run as structured events, rendered one per line by FormatTrace
// for golden comparison.
package harness
