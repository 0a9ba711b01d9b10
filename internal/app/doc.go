// Package app provides the Bubble Tea model of the interactive branch browser.
//
// The model is a small state machine. Browsing dispatches single-key
// actions through a table of guard and handler pairs: checkout, delete,
// rename, set diffbase (local or remote) and new branch. Guard rejections
// show a message and keep browsing. A failed repository mutation ends the
// session; Err returns the cause.
package app
