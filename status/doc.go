// Package status defines the point-in-time progress snapshot of a slice
// source operator and its two interchange formats.
//
// A Status is an immutable record. Its two set fields (processed queries and
// processed shards) are canonicalized on construction: deduplicated and sorted
// in ascending lexicographic order, so logically equal snapshots always encode
// to identical bytes.
//
// # Binary Format
//
//	Header (16 bytes):
//	  Magic    (4 bytes) - 0x53534354 ("SSCT")
//	  Version  (4 bytes) - Format version (currently 1)
//	  Checksum (4 bytes) - CRC32-IEEE of payload
//	  Length   (4 bytes) - Payload length in bytes
//
//	Payload (integers are unsigned varints):
//	  ProcessedSlices
//	  ProcessedQueries (count, then length-prefixed strings)
//	  ProcessedShards  (count, then length-prefixed strings)
//	  SliceIndex
//	  TotalSlices
//	  PagesEmitted
//	  SliceMin
//	  SliceMax
//	  Current
//
// Decoding fails closed: an unknown version yields ErrIncompatibleVersion,
// and any framing, checksum, ordering or length violation yields ErrCorrupt.
//
// # Text Format
//
// ToText renders an indented JSON object with the keys
//
//	processed_slices, processed_queries, processed_shards, slice_index,
//	total_slices, pages_emitted, slice_min, slice_max, current
//
// in exactly that order. Monitoring consumers depend on these names.
package status
