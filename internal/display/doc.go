// Package display renders catalog contents and user-facing warnings for the
// dcmdb CLI.
//
// Show prints the loaded cases at one of five detail levels:
//
//	-1  case names
//	 0  case and experiment names
//	 1  per file template: first and last date, leadtime range
//	 2  per date: leadtime range, plus an example path
//	 3  per date: every leadtime, plus an example path
//
// Colour is used only when the writer is a terminal. All functions accept an
// io.Writer for testability.
package display
