// Package provider is the boundary to the external extraction/download tool.
//
// It carries three things: the ordered extractor rule table mirroring the
// tool's own URL classification list, the normalized Item record that listing
// results are reduced to before the rest of the system sees them, and the
// yt-dlp subprocess client implementing the Client contract. Listing results
// from the tool are loosely typed and shape-shift between releases; everything
// past this package works only with Item.
package provider
