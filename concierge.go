// Package concierge ingests local files and web pages into a normalized,
// chunked corpus for semantic search. It handles authenticated fetching
// against a site with an unknown login form, bounded redirect resolution,
// metadata classification and chunking for embedding.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, langchaingo/).
package concierge
