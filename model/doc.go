// Package model persists fitted k-means models.
//
// A model file is self-describing:
//
//	[magic "CLSM"][version u16][dtype u8][compression u8]
//	[codec name len u8][codec name][header len u32][header]
//	[block: uncompressed u32, compressed u32, data][crc32 u32]
//
// The header carries the metric, the shape and the fit statistics. The
// block holds the centers in row-major little-endian order, compressed with
// LZ4 or ZSTD when that saves space. The CRC32 covers the uncompressed
// centers.
//
// Models are stored in any blobstore.BlobStore. A Registry publishes
// monotonically versioned models through a blobstore.Committer so that
// concurrent publishers never overwrite each other.
package model
