// Package session implements the assisted rotate-and-crop workflow as a pure
// state machine.
//
// A session moves through four phases:
//
//  1. Load: the input is decoded (see Controller.Start).
//  2. Rotate: ranked rotation angles are proposed from detected straight
//     edges; the operator picks and fine-tunes one, then commits it.
//  3. Crop: circle and rectangle candidates are detected on the rotated
//     image; the operator picks one, adjusts it, or drags a freeform
//     rectangle, then commits the crop.
//  4. Save: the cropped image is previewed and written to a new file.
//
// Every operator action is a Command. Controller.Apply takes the current State
// and a Command and returns the next State; it never mutates its input and
// keeps no hidden session state, so the interactive key loop and the JSON-RPC
// server drive sessions through exactly the same code.
//
// Detection is never re-run by adjustments. It runs once on Start and once per
// committed rotation whose angle key differs from the previous one.
package session
