// Package client contains the contracts of the remote collaborators the
// EduSync client talks to, and an HTTP implementation of them.
//
// # Overview
//
//  1. Transport-agnostic API contracts: AuthAPI, ResourcesAPI, UserAPI and
//     SearchAPI. Services depend on these, tests substitute fakes.
//  2. A concrete REST implementation (see HTTPClient) that speaks the portal
//     backend's JSON envelope {success, message, data}, injects the session
//     token as a Bearer Authorization header, and maps transport failures
//     to sentinel errors.
//
// # Error Handling
//
// Connection failures and 502/503/504 map to common.ErrUnavailable, 401/403
// to common.ErrUnauthorized. Every failure is returned as a
// *common.RemoteError carrying a message safe to show to the user.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation and timeouts.
package client
