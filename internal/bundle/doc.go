// Package bundle fetches raw asset bytes by logical path.
//
// Fs is the access abstraction: WebFs reads an HTTP mirror (or the game
// patch CDN via NewCDNFs), LocalFs reads an extracted tree on disk, and
// CachedFs layers a Cache (in-memory or SQLite-backed on disk) over any
// backend. Missing paths surface as ErrNotExist so callers can distinguish
// a per-record miss from an I/O fault.
package bundle
