// Package viz is the terminal frontend for a fed-batch run, built on Bubble
// Tea.
//
//   - [Model]: drives a sim.Controller once per frame and renders it
//   - [Canvas]: Braille-based pixel canvas the reactor is drawn on
//   - [DrawVessel]: vessel, liquid level, rotating impeller and feed inlet
//
// # Key Bindings
//
//	S/Enter - Apply controls and start
//	R       - Apply controls and reset
//	Tab     - Select control
//	Up/Down - Adjust control
//	V       - Toggle volume policy
//	X       - Export run to CSV and JSON
//	T       - Cycle colour themes
//	?       - Show help
//
// Control edits are held until the next start or reset, so a running culture
// is never reparameterised mid-run.
package viz
