// Package render rasterizes dump frames.
//
// A [Scene] is built once per dump. It precomputes everything that does not
// change between frames (axes, tick labels, colour bar, signal trace) and
// then composes each frame from the pressure field, the material backdrop,
// the source markers, the optional focus regime and the legend:
//
//	scene, err := render.NewScene(d, render.DefaultOptions())
//	img, err := scene.Frame(0)
//
// Frame is safe for concurrent use.
package render
