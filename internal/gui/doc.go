// Package gui implements the desktop window of flickfinder using fyne.
// The Application is a finder.Sink: search results arrive on background
// goroutines and are handed to the UI goroutine with fyne.Do.
package gui
