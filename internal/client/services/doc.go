// Package services contains the application services of the EduSync client:
// the session manager, the resource entity cache, the search engine, the
// avatar (media) resolver and per-identity settings.
//
// Every service owns its in-memory state behind a mutex, persists through
// storage.Store, and announces each successful mutation on the events.Bus.
// Mutations are optimistic: memory and store change first, remote failures
// are reported but never rolled back. Events arriving from other tabs are
// applied last-write-wins on whole records.
package services
