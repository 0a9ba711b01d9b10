// Package branch is the branch relationship engine.
//
// A Session wraps a git.Backend and owns the per-repository caches (default
// branch, remote names). Branch descriptors are built by Session.List and
// compute their diffbase, remote, ahead/behind counts and dirty flag lazily,
// at most once per descriptor. A new List discards every cached value.
//
// The mutating operations (Checkout, Delete, Rename, SetDiffbase,
// CreateBranch) are paired with guards that reject the action without
// touching the repository.
package branch
