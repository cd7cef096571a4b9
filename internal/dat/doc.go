// Package dat decodes the fixed-schema binary tables stored in the asset
// bundle.
//
// A .dat64 file is a little-endian row count, a fixed-width row section, a
// boundary magic, and a variable-length data section. Strings live in the
// variable section as UTF-16LE and are referenced from rows by offset; the
// String type carries that reference and decodes it on demand. Decoding is
// fallible by design: the source tables guarantee neither referential
// integrity nor valid text, so every consumer must handle a failed Decode.
//
// Only the columns talisman consumes are mapped; see rows.go for the
// per-table layouts.
package dat
