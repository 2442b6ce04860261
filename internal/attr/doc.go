// Package attr models tri-state text attributes and the two wire codecs
// used to exchange them with the document engine.
//
// Every attribute field distinguishes three states: explicitly true/set,
// explicitly false/set, and unset ("no opinion, inherit"). Unset is encoded
// as a nil pointer in memory; the wire sentinel "None" and JSON null exist
// only at the codec boundary and never leak into [TextAttributes].
//
// Two codecs cover two separate protocols:
//
//   - Compact positional: 7 comma-separated tokens in fixed order, used for
//     single-offset attribute queries. Decoding is fail-soft.
//   - Structured: a JSON object with one key per attribute, used for
//     full-document and range attribute exchange. Unset fields encode as
//     explicit null so receivers can tell "cleared" from "not addressed".
//
// The formats are not interchangeable: values must never be encoded with one
// codec and decoded with the other.
package attr
