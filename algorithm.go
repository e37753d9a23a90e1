package ddmhash

import (
	"hash"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/crypto/sha3"
)

// hasher is a repeatable hash function: Write data, then Read the
// digest into dest. Reusing one instance across many small hashes
// avoids the allocation cost of constructing a fresh sha3 state per
// node, which matters here since cache/DAG generation calls it once
// per 64-byte node.
type hasher func(dest, data []byte)

// makeHasher wraps a hash.Hash that also supports the streaming Read
// of its digest (every golang.org/x/crypto/sha3 state does) into a
// hasher. The returned function is not safe for concurrent use.
func makeHasher(h hash.Hash) hasher {
	type readerHash interface {
		hash.Hash
		Read([]byte) (int, error)
	}
	rh, ok := h.(readerHash)
	if !ok {
		panic("ddmhash: sha3 state does not support Read")
	}
	outputLen := rh.Size()
	return func(dest, data []byte) {
		rh.Reset()
		rh.Write(data)
		rh.Read(dest[:outputLen])
	}
}

// fnv is the non-cryptographic mixer used throughout the algorithm:
// (x * 0x01000193) XOR y, computed modulo 2^32.
func fnv(x, y uint32) uint32 {
	return x*fnvPrime ^ y
}

// seedHash derives the 32-byte epoch seed for block by iteratively
// SHA3-256-hashing a zero buffer epoch times.
func seedHash(block uint64) []byte {
	seed := make([]byte, 32)
	epoch := epochOf(block)
	if epoch == 0 {
		return seed
	}
	keccak256 := makeHasher(sha3.NewLegacyKeccak256())
	for i := uint64(0); i < epoch; i++ {
		keccak256(seed, seed)
	}
	return seed
}

func nodeAt(nodes []byte, i uint32) []byte {
	return nodes[uint64(i)*hashBytes : uint64(i+1)*hashBytes]
}

// generateCache fills dest (a cacheSize-byte buffer) with the
// RandMemoHash cache for the given seed. dest's length must be a
// positive multiple of 64.
func generateCache(dest []byte, seed []byte) bool {
	if len(dest) == 0 || len(dest)%hashBytes != 0 {
		return false
	}
	numNodes := uint32(len(dest) / hashBytes)
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())

	keccak512(nodeAt(dest, 0), seed)
	for i := uint32(1); i < numNodes; i++ {
		keccak512(nodeAt(dest, i), nodeAt(dest, i-1))
	}

	mixed := make([]byte, hashBytes)
	for round := 0; round < cacheRounds; round++ {
		for i := uint32(0); i < numNodes; i++ {
			idx := word32(nodeAt(dest, i), 0) % numNodes
			srcIndex := (numNodes - 1 + i) % numNodes

			copy(mixed, nodeAt(dest, srcIndex))
			xorInto(mixed, nodeAt(dest, idx))
			keccak512(nodeAt(dest, i), mixed)
		}
	}
	// Every word was written through word32/putWord32 or copied
	// straight from a Keccak digest, both already little-endian, so
	// there is no separate fix_endian_arr32 pass to run here.
	return true
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// generateDatasetItem deterministically computes the index'th 64-byte
// dataset node from cache. It is pure and independent of any other
// item, which is what lets the full DAG builder compute items in
// parallel below.
func generateDatasetItem(cache []byte, index uint32, keccak512 hasher) []byte {
	numParents := uint32(len(cache) / hashBytes)

	mix := make([]byte, hashBytes)
	copy(mix, nodeAt(cache, index%numParents))
	putWord32(mix, 0, word32(mix, 0)^index)
	keccak512(mix, mix)

	for i := uint32(0); i < datasetParents; i++ {
		parentIndex := fnv(index^i, word32(mix, int(i%hashWords))) % numParents
		parent := nodeAt(cache, parentIndex)
		for w := 0; w < hashWords; w++ {
			putWord32(mix, w, fnv(word32(mix, w), word32(parent, w)))
		}
	}
	keccak512(mix, mix)
	return mix
}

// generateDataset materializes the full DAG for epoch into dest, a
// datasetSize-byte buffer, reading only from cache. Item generation is
// embarrassingly parallel, fanned out across every available CPU; a
// single reporter goroutine samples completed-item counts so progress
// callbacks fire in non-decreasing percentage order despite the
// concurrent writers. If progress returns true the build is aborted
// and ErrDAGBuildCancelled is returned; dest is left partially filled.
func generateDataset(dest []byte, epoch uint64, cache []byte, progress func(percent uint64) bool) error {
	if len(dest) == 0 || len(dest)%mixBytes != 0 {
		return ErrInvalidSize
	}
	maxN := uint64(len(dest)) / hashBytes
	logger := log.New("epoch", epoch)
	logger.Info("Generating ddmhash DAG", "items", maxN)

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if uint64(workers) > maxN {
		workers = int(maxN)
	}

	var (
		completed atomic.Uint64
		aborted   atomic.Bool
		wg        sync.WaitGroup
	)

	if progress != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(time.Millisecond)
			defer ticker.Stop()
			var nextPercent uint64 = 1
			for nextPercent <= 100 {
				<-ticker.C
				done := completed.Load()
				for nextPercent <= 100 && done*100 >= nextPercent*maxN {
					if progress(nextPercent) {
						aborted.Store(true)
						return
					}
					nextPercent++
				}
				if done >= maxN || aborted.Load() {
					return
				}
			}
		}()
	}

	wg.Add(workers)
	start := time.Now()
	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer wg.Done()
			keccak512 := makeHasher(sha3.NewLegacyKeccak512())
			for n := uint64(w); n < maxN; n += uint64(workers) {
				if aborted.Load() {
					return
				}
				item := generateDatasetItem(cache, uint32(n), keccak512)
				copy(dest[n*hashBytes:(n+1)*hashBytes], item)
				completed.Add(1)
			}
		}()
	}
	wg.Wait()

	if aborted.Load() {
		logger.Warn("DAG generation cancelled", "elapsed", common.PrettyDuration(time.Since(start)))
		return ErrDAGBuildCancelled
	}
	logger.Info("Generated ddmhash DAG", "elapsed", common.PrettyDuration(time.Since(start)))
	return nil
}

// hashimoto is the shared core of the light and full variants: it
// seeds a 128-byte mix from (headerHash, nonce), performs
// loopAccesses FNV-guided dataset lookups via item, and compresses the
// mix down to the 32-byte mix digest and 32-byte result.
func hashimoto(headerHash []byte, nonce uint64, size uint64, item func(index uint32) []byte) (mixHash, result []byte) {
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	keccak256 := makeHasher(sha3.NewLegacyKeccak256())

	seed := make([]byte, 40)
	copy(seed, headerHash)
	putUint64LE(seed[32:], nonce)

	s := make([]byte, hashBytes)
	keccak512(s, seed)

	mix := make([]byte, mixBytes)
	for w := 0; w < mixWords; w++ {
		putWord32(mix, w, word32(s, w%hashWords))
	}

	pageSize := uint64(mixBytes)
	numPages := uint32(size / pageSize)

	for i := uint32(0); i < loopAccesses; i++ {
		index := fnv(word32(s, 0)^i, word32(mix, int(i)%mixWords)) % numPages
		for n := 0; n < mixNodes; n++ {
			dagNode := item(index*uint32(mixNodes) + uint32(n))
			dst := mix[n*hashBytes : (n+1)*hashBytes]
			for w := 0; w < hashWords; w++ {
				putWord32(dst, w, fnv(word32(dst, w), word32(dagNode, w)))
			}
		}
	}

	compressed := make([]byte, mixWords/4*4)
	for w := 0; w < mixWords; w += 4 {
		r := word32(mix, w)
		r = r*fnvPrime ^ word32(mix, w+1)
		r = r*fnvPrime ^ word32(mix, w+2)
		r = r*fnvPrime ^ word32(mix, w+3)
		putWord32(compressed, w/4, r)
	}

	digest := make([]byte, 96)
	copy(digest[:64], s)
	copy(digest[64:], compressed[:32])
	out := make([]byte, 32)
	keccak256(out, digest)

	return compressed[:32], out
}

// hashimotoLight evaluates hashimoto against an in-memory cache,
// deriving each dataset item on demand.
func hashimotoLight(size uint64, cache []byte, headerHash []byte, nonce uint64) (mixHash, result []byte) {
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	lookup := func(index uint32) []byte {
		return generateDatasetItem(cache, index, keccak512)
	}
	return hashimoto(headerHash, nonce, size, lookup)
}

// hashimotoFull evaluates hashimoto against an already-materialized
// dataset (typically memory-mapped).
func hashimotoFull(dataset []byte, headerHash []byte, nonce uint64) (mixHash, result []byte) {
	lookup := func(index uint32) []byte {
		return nodeAt(dataset, index)
	}
	return hashimoto(headerHash, nonce, uint64(len(dataset)), lookup)
}

func putUint64LE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}
