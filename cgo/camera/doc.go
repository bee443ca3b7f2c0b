// Package camera provides local capture devices through OpenCV.
//
// Builds with CGO enabled use gocv; builds without CGO get a stub whose
// Acquire always fails with domain.ErrCameraNotFound, so sessions fall
// back to engines that manage their own capture.
package camera
