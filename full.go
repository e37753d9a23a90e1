package ddmhash

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/common"
)

// Full is an epoch-scoped handle backed by the complete, memory-mapped
// DAG. Construction is expensive the first time an epoch is built —
// every subsequent NewFull for the same epoch and dir reuses the file
// already on disk.
type Full struct {
	file   *os.File
	region mmap.MMap
	data   []byte
	block  uint64
}

// NewFull builds (or loads) the DAG for the epoch containing block,
// storing it under dir, and returns a handle ready to Compute hashes
// against the mapped dataset. light supplies the cache the DAG is
// derived from; it must have been built for the same block. progress,
// if non-nil, is invoked with a non-decreasing percentage in [1,100]
// while a fresh DAG is generated; returning true aborts the build and
// NewFull returns ErrDAGBuildCancelled.
func NewFull(light *Light, dir string, progress func(percent uint64) bool) (*Full, error) {
	block := light.block
	size := light.datasetLen
	seed := seedHash(block)

	f, region, data, err := openOrBuildDAG(dir, seed, size, epochOf(block), light.cache, progress)
	if err != nil {
		return nil, err
	}
	return &Full{file: f, region: region, data: data, block: block}, nil
}

// Block returns the block number the handle's dataset was derived for.
func (fu *Full) Block() uint64 {
	return fu.block
}

// Dataset returns the raw memory-mapped dataset bytes, excluding the
// file's magic header. Callers must not retain the slice past Close.
func (fu *Full) Dataset() []byte {
	return fu.data
}

// Compute evaluates the proof-of-work hash of (headerHash, nonce)
// against the memory-mapped dataset.
func (fu *Full) Compute(headerHash common.Hash, nonce uint64) Result {
	if len(fu.data) == 0 || len(fu.data)%mixBytes != 0 {
		return Result{}
	}
	mix, result := hashimotoFull(fu.data, headerHash.Bytes(), nonce)
	return Result{
		Result:  common.BytesToHash(result),
		MixHash: common.BytesToHash(mix),
		Success: true,
	}
}

// Close unmaps the dataset and closes the underlying file. It is an
// error to call Compute or Dataset after Close.
func (fu *Full) Close() error {
	var unmapErr error
	if fu.region != nil {
		unmapErr = fu.region.Unmap()
		fu.region = nil
		fu.data = nil
	}
	if fu.file != nil {
		if err := fu.file.Close(); err != nil && unmapErr == nil {
			unmapErr = err
		}
		fu.file = nil
	}
	return unmapErr
}
