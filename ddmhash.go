// Package ddmhash implements the Dagger-Hashimoto proof-of-work engine
// used to seal and verify blocks in the Dagger-Hashimoto family (the
// algorithm historically distributed as the C library "ddmhash").
//
// The package exposes two modes of operation. Light keeps only a
// small, epoch-derived cache in memory and derives each dataset node
// on demand; Full materializes the complete DAG once, persists it to
// disk, memory-maps it, and serves every subsequent hash from the
// mapped buffer. Both modes produce bit-identical results for the
// same (block number, header hash, nonce) triple.
//
// This package is deliberately narrow: it computes hashes and offers a
// byte-lexicographic difficulty comparison. It does not validate
// blocks, adjust difficulty, mine, or speak any wire protocol.
package ddmhash

import "github.com/ethereum/go-ethereum/common"

// Algorithm constants. These mirror the C reference implementation's
// compile-time constants and must not be changed without bumping
// Revision, since they determine every byte of cache/DAG output.
const (
	epochLength        = 30000         // blocks per epoch
	cacheInitBytes     = 1 << 24       // cache size for epoch 0, before rounding
	cacheGrowthBytes   = 1 << 17       // cache size growth per epoch, before rounding
	datasetInitBytes   = 1 << 30       // dataset size for epoch 0, before rounding
	datasetGrowthBytes = 1 << 23       // dataset size growth per epoch, before rounding
	cacheRounds        = 3             // RandMemoHash rounds in the cache builder
	datasetParents     = 256           // cache lookups per dataset item
	hashBytes          = 64            // bytes in a node
	hashWords          = hashBytes / 4 // 32-bit words in a node
	mixBytes           = 128           // bytes in the transient hashimoto mix
	mixWords           = mixBytes / 4  // 32-bit words in the mix
	mixNodes           = mixWords / hashWords
	loopAccesses       = 64 // hashimoto dataset accesses
	fnvPrime           = 0x01000193
	maxEpoch           = 2048 // epochs 0..maxEpoch-1 are valid

	// Revision is the DAG file format version; it is embedded in the
	// DAG filename so an algorithm change invalidates cached files.
	Revision = 23

	// dagMagic is the 8-byte little-endian sentinel at the head of a
	// DAG file, confirming format integrity.
	dagMagic uint64 = 0xFEE1DEADBADDCAFE
)

// Result is the output of a single proof-of-work evaluation.
type Result struct {
	Result  common.Hash // the final 256-bit proof-of-work value
	MixHash common.Hash // the 256-bit mix digest; QuickHash re-derives Result from it
	Success bool        // false if the inputs violated a size precondition
}
