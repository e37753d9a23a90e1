package ddmhash

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

const magicSize = 8

// dagStatus is the outcome of prepareDAGFile's inspection of an
// existing (or freshly created) DAG file.
type dagStatus int

const (
	statusMismatch dagStatus = iota // freshly created/truncated, magic not yet written
	statusMatch                     // existing file, correct size and magic
)

// DefaultDir returns the default per-user directory DAG files are
// stored under: $HOME/.ddmhash on Unix-like systems. Callers that need
// the original scheme's %LOCALAPPDATA%\DDMhash on Windows, or any
// other override, should pass an explicit dir to NewFull instead of
// relying on this default.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".ddmhash")
}

// dagFileName formats the per-epoch DAG filename: full-R{revision}-
// {first 8 bytes of seed, byte-swapped, lower-case hex}. filepath.Join
// is used to compose it with a directory, which always normalizes the
// separator — the deliberate resolution of the Windows tautological-
// separator quirk noted in spec.md §9 (see DESIGN.md).
func dagFileName(seed []byte) string {
	h := binary.LittleEndian.Uint64(seed[:8])
	return fmt.Sprintf("full-R%d-%016x", Revision, swap64(h))
}

// prepareDAGFile ensures dir exists and opens (or creates) the DAG
// file for seed/size, returning the open file and its status
// (statusMismatch when it was freshly created). A read-write handle is always
// returned on success; the caller owns closing it.
func prepareDAGFile(dir string, seed []byte, size uint64, forceCreate bool) (*os.File, dagStatus, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("ddmhash: create dag directory: %w", err)
	}
	path := filepath.Join(dir, dagFileName(seed))

	if !forceCreate {
		f, err := os.OpenFile(path, os.O_RDWR, 0o644)
		if err == nil {
			info, err := f.Stat()
			if err != nil {
				f.Close()
				return nil, 0, fmt.Errorf("ddmhash: stat dag file: %w", err)
			}
			if uint64(info.Size()) != size+magicSize {
				f.Close()
				return nil, 0, errBadSize
			}
			var magicBuf [magicSize]byte
			if _, err := f.ReadAt(magicBuf[:], 0); err != nil {
				f.Close()
				return nil, 0, errBadSize
			}
			if binary.LittleEndian.Uint64(magicBuf[:]) != dagMagic {
				f.Close()
				return nil, 0, errBadMagic
			}
			return f, statusMatch, nil
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, 0, fmt.Errorf("ddmhash: create dag file: %w", err)
	}
	if _, err := f.WriteAt([]byte{0}, int64(size+magicSize-1)); err != nil {
		f.Close()
		os.Remove(path) // don't leave a poisoned zero-length file (spec.md §9)
		return nil, 0, fmt.Errorf("ddmhash: allocate dag file: %w", err)
	}
	return f, statusMismatch, nil
}

// mapDAGFile memory-maps the full file (magic header included) and
// returns the dataset slice starting after the 8-byte magic.
func mapDAGFile(f *os.File) (mmap.MMap, []byte, error) {
	region, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("ddmhash: mmap dag file: %w", err)
	}
	return region, region[magicSize:], nil
}

// openOrBuildDAG implements the full construction state chart from
// spec.md §4.9: try to reuse a correctly sized, correctly tagged DAG
// file; on a size/magic mismatch force one recreation; populate a
// freshly created file via generateDataset and stamp the magic only
// once generation succeeds.
func openOrBuildDAG(dir string, seed []byte, size uint64, epoch uint64, cache []byte, progress func(uint64) bool) (*os.File, mmap.MMap, []byte, error) {
	f, status, err := prepareDAGFile(dir, seed, size, false)
	if err != nil {
		if err == errBadSize || err == errBadMagic {
			f, status, err = prepareDAGFile(dir, seed, size, true)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%w: %v", ErrDAGMismatch, err)
			}
			if status != statusMismatch {
				f.Close()
				return nil, nil, nil, ErrDAGMismatch
			}
		} else {
			return nil, nil, nil, err
		}
	}

	region, data, err := mapDAGFile(f)
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}

	if status == statusMatch {
		log.Info("Loaded ddmhash DAG from disk", "epoch", epoch, "size", common.StorageSize(size))
		return f, region, data, nil
	}

	if err := generateDataset(data, epoch, cache, progress); err != nil {
		region.Unmap()
		f.Close()
		return nil, nil, nil, err
	}
	if err := stampMagic(f); err != nil {
		region.Unmap()
		f.Close()
		return nil, nil, nil, err
	}
	return f, region, data, nil
}

func stampMagic(f *os.File) error {
	var magicBuf [magicSize]byte
	binary.LittleEndian.PutUint64(magicBuf[:], dagMagic)
	if _, err := f.WriteAt(magicBuf[:], 0); err != nil {
		return fmt.Errorf("ddmhash: write dag magic: %w", err)
	}
	return f.Sync()
}
