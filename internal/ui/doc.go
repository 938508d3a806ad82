// Package ui implements the interactive resolution surfaces.
//
// Two implementations of the resolver prompt live here:
//  1. [TerminalPrompt] : numbered candidates over plain stdin/stdout,
//     the default for interactive runs
//  2. [PickerPrompt] : a bubbletea list picker with manual id entry,
//     enabled with --interactive-ui
//
// Both accept a candidate pick, a pasted YouTube URL or bare video id,
// or a skip, and keep asking until the input is valid.
package ui
