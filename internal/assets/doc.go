// Package assets implements the icon extraction pipeline.
//
// A Pipeline merges the base and unique item tables into one catalog,
// filters it through caller-registered selectors (a record survives when any
// selector matches), resolves each survivor to its source image through the
// ItemVisualIdentity table, applies matching postprocess transforms, and
// writes the encoded WebP next to the record's display name.
//
// Faults are two-tier: a missing required table, an unusable output
// directory, an unexpected bundle I/O fault, or an encode failure abort the
// run; everything else - dangling foreign keys, alternate art, undecodable
// text, missing or undecodable source images - skips the single record and
// is surfaced through the injected Reporter.
package assets
