// Package app runs complete downloads: it resolves a manga page, downloads
// the selected chapters, converts them and records the run in history.
//
// Both the manga-dl command and the terminal UI are thin front ends over App.
package app
