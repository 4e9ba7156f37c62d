// Package dump reads and writes simulation dump files.
//
// A dump holds the material label image used as the backdrop of a render,
// the pressure field of every time step and a free-form attribute set
// describing the grid, the sources and the colour limits:
//
//	magic "WDMP" | version uint16 | header length uint32 | header JSON
//	image : ny*nx int32
//	frames: nt * (ny*nx float32 | xxhash64 of the frame bytes)
//
// All numbers are little endian. Attributes are kept as raw JSON so keys the
// renderer does not know about survive a decode/encode round trip.
//
// # Example
//
//	d, err := dump.Open("BaselineWavesAzim.wdump")
//	p, err := d.Params()
//	frame := d.Pressure.Frame(0)
package dump
