package ddmhash

import "github.com/ethereum/go-ethereum/common"

// Light is an epoch-scoped handle that keeps only the small RandMemoHash
// cache in memory and derives each dataset item on demand. It is cheap
// to construct and well suited to verification, where a handful of
// hashes per header is the common case.
type Light struct {
	cache      []byte
	cacheSize  uint64
	datasetLen uint64
	block      uint64
}

// NewLight builds the cache for the epoch containing block and returns
// a handle ready to Compute hashes for that epoch.
func NewLight(block uint64) (*Light, error) {
	size := cacheSize(block)
	if size == 0 || size%hashBytes != 0 {
		return nil, ErrInvalidSize
	}
	cache := make([]byte, size)
	if !generateCache(cache, seedHash(block)) {
		return nil, ErrInvalidSize
	}
	return &Light{cache: cache, cacheSize: size, datasetLen: datasetSize(block), block: block}, nil
}

// Block returns the block number the handle's cache was derived for.
func (l *Light) Block() uint64 {
	return l.block
}

// Compute evaluates the proof-of-work hash of (headerHash, nonce)
// against the dataset size for the handle's epoch, deriving each
// accessed dataset item from the in-memory cache.
func (l *Light) Compute(headerHash common.Hash, nonce uint64) Result {
	if l.datasetLen == 0 || l.datasetLen%mixBytes != 0 {
		return Result{}
	}
	mix, result := hashimotoLight(l.datasetLen, l.cache, headerHash.Bytes(), nonce)
	return Result{
		Result:  common.BytesToHash(result),
		MixHash: common.BytesToHash(mix),
		Success: true,
	}
}

// Close releases the handle's cache. It is safe to call Close more
// than once; Compute after Close produces undefined results.
func (l *Light) Close() {
	l.cache = nil
}
