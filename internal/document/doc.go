// Package document implements the document layer (C8): a canonical
// internal representation (MessagePack, decoded to a Go
// map[string]any/[]any/scalar tree), format import/export across
// JSON, BSON, CBOR, MessagePack and UBJSON, JSON-Pointer field-path
// projection and merge, JSON Patch (RFC 6902) and JSON Merge Patch
// (RFC 7386) application, id_field-driven key extraction, gist
// (union of field paths across a batch), and gather/table columnar
// projection with per-cell validity and type coercion.
package document
