// Package typedjson converts between JSON text and statically typed Go values.
// It provides a [Decoder] type to [Unmarshal] JSON onto go types (e.g. structs,
// slices, maps, strings) similar to [json.Unmarshal], and an [Encoder] type to
// [Marshal] arbitrary values back into JSON text.
//
// Unlike the standard library the decoder is strict: it derives a descriptor
// from the target type and walks the parsed JSON tree alongside it. Every
// structural mismatch is reported as a [DecodeError] carrying the location of
// the offending subtree, e.g. ".[2].name". Numbers are widened but never
// narrowed: decoding 5 into a float64 works, decoding 5.2 into an int fails.
package typedjson
