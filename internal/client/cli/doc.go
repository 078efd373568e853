// Package cli provides the interactive EduSync command-line client.
//
// It drives the session, resource cache, search, avatar and settings
// services through a small REPL. Several REPLs started against the same
// profile store and cross-tab transport behave like browser tabs: a change
// made in one is announced in the others.
//
// Key features:
//   - Login / Register / Logout, session restored on start
//   - List, add, upload, edit, delete, open and download resources
//   - Favorites, recently accessed list and access history
//   - Debounce-free search with filters and recent queries
//   - Profile picture upload, removal and preview
//   - Per-user settings
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
