// Package archive persists status snapshots to a blobstore.Store.
//
// Layout:
//
//	scans/<scanID>/<operatorID>/<seq>.status   per-operator snapshots
//	scans/<scanID>/aggregate/<seq>.status      folded scan snapshot
//	scans/<scanID>/LATEST                      pointer to the newest aggregate
//
// Each blob is the binary status encoding wrapped in a compression envelope:
//
//	[Compression u8][UncompressedSize u32][CompressedSize u32][Data...]
//
// CompressedSize 0 means the data is stored as is, which happens whenever
// compression would not shrink it by at least ten percent.
package archive
