// Package cgo provides CGO bindings for native libraries.
// This package isolates all CGO code from the pure Go core.
//
// Sub-packages:
//   - camera: OpenCV (gocv) capture devices behind the driven.Camera port
package cgo
