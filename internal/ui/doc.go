// Package ui renders the interactive branch browser.
//
// Render takes a RenderParams snapshot built by the app package and
// produces the full terminal frame. Rendering has no side effects; all
// state lives in the app model.
package ui
