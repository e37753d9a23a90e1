package ddmhash

import (
	"math/big"
	"sync"
)

// epochOf maps a block number to its epoch index.
func epochOf(block uint64) uint64 {
	return block / epochLength
}

// cacheSizeTable and datasetSizeTable memoize the per-epoch sizes the
// spec treats as a precomputed lookup table. Rather than transcribing
// 2048 magic numbers, this package derives them with the same
// prime-search procedure the reference table was generated with, the
// first time any epoch is looked up, and reuses the table afterward.
var (
	sizeTablesOnce   sync.Once
	cacheSizeTable   [maxEpoch]uint64
	datasetSizeTable [maxEpoch]uint64
)

func buildSizeTables() {
	for epoch := uint64(0); epoch < maxEpoch; epoch++ {
		cacheSizeTable[epoch] = calcCacheSize(epoch)
		datasetSizeTable[epoch] = calcDatasetSize(epoch)
	}
}

// cacheSize returns the cache size in bytes for the epoch containing
// block. It panics if the epoch is out of range — an
// implementation-contract violation per spec, not a recoverable error.
func cacheSize(block uint64) uint64 {
	epoch := epochOf(block)
	if epoch >= maxEpoch {
		panic("ddmhash: epoch out of range")
	}
	sizeTablesOnce.Do(buildSizeTables)
	return cacheSizeTable[epoch]
}

// datasetSize returns the dataset (DAG) size in bytes for the epoch
// containing block. It panics if the epoch is out of range.
func datasetSize(block uint64) uint64 {
	epoch := epochOf(block)
	if epoch >= maxEpoch {
		panic("ddmhash: epoch out of range")
	}
	sizeTablesOnce.Do(buildSizeTables)
	return datasetSizeTable[epoch]
}

// calcCacheSize computes the cache size for an epoch: start from the
// linear growth formula, then step down by two nodes at a time until
// the size in nodes is prime, keeping cache arithmetic memory-hard to
// precompute. Mirrors get_cache_size in the ddmhash reference.
func calcCacheSize(epoch uint64) uint64 {
	size := cacheInitBytes + cacheGrowthBytes*epoch - hashBytes
	for !isPrime(size / hashBytes) {
		size -= 2 * hashBytes
	}
	return size
}

// calcDatasetSize computes the dataset size for an epoch analogously
// to calcCacheSize, stepping in units of mixBytes. Mirrors
// get_full_size in the ddmhash reference.
func calcDatasetSize(epoch uint64) uint64 {
	size := datasetInitBytes + datasetGrowthBytes*epoch - mixBytes
	for !isPrime(size / mixBytes) {
		size -= 2 * mixBytes
	}
	return size
}

func isPrime(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(20)
}
