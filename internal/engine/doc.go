// Package engine coordinates the catalog, the identity resolver and the
// provider client. It owns the lifecycle operations (add, remove, toggle),
// schema migration on startup, and the refresh/download sync passes with
// per-source and per-video failure isolation.
package engine
