// Package engine groups the tracking engine adapters.
//
// The tracking engines themselves run outside this process (in a browser
// or a recorded session). Adapters in the sub-packages turn their event
// streams into driven.TrackingEngineProvider implementations:
//
//   - relay: events pushed in-process, e.g. posted by a browser bridge
//   - replay: events read from a JSON-lines log, optionally followed
package engine
