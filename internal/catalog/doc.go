// Package catalog persists the source/video entity graph in SQLite.
//
// One polymorphic entity table holds the identity triple (extractor key,
// extractor data, kind) under a unique constraint; per-kind extension tables
// carry source scheduling and the content join table links sources to the
// videos they reference. Videos are shared, never duplicated: removal is a
// reference-count check against the join table, not a blind cascade.
//
// The store is the single source of truth for catalog semantics. Schema
// generations are tracked in config rows; Migrate refuses to run against a
// generation it does not recognize.
package catalog
