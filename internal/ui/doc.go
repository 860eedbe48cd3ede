// Package ui renders command lifecycle events as human-readable console output.
//
// ConsoleCommandEventLogger implements execshell.CommandEventObserver and is
// attached to the shell executor when the console log format is selected, so
// unattended runs leave a readable status trail on standard output.
package ui
