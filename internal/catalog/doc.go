// Package catalog talks to the remote music catalog.
//
// [Client] wraps the catalog HTTP API (search, external-ID lookup, and the
// per-user favorites endpoints) behind OAuth2 bearer authentication, in the
// same shape as the other service clients in this codebase: typed response
// structs, a doRequest helper, and sentinel-classified errors.
//
// [Resolver] sits on top of the client and matches a playback observation to
// a catalog song using an exact-ID shortcut when the player supplied a store
// identifier, or a scored fuzzy search otherwise. Search calls run under the
// "quick" retry policy; a track the catalog does not know resolves to nil
// without error.
package catalog
