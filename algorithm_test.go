package ddmhash

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/sha3"
)

func TestSeedHashEpoch0(t *testing.T) {
	seed := seedHash(0)
	if !bytes.Equal(seed, make([]byte, 32)) {
		t.Errorf("seedHash(0) = %x, want 32 zero bytes", seed)
	}
}

func TestSeedHashEpochRollover(t *testing.T) {
	a := seedHash(epochLength - 1)
	b := seedHash(0)
	if !bytes.Equal(a, b) {
		t.Errorf("seedHash(%d) = %x, want seedHash(0) = %x", epochLength-1, a, b)
	}
}

func TestSeedHashEpoch1(t *testing.T) {
	want := make([]byte, 32)
	keccak256 := makeHasher(sha3.NewLegacyKeccak256())
	keccak256(want, make([]byte, 32))

	got := seedHash(epochLength)
	if !bytes.Equal(got, want) {
		t.Errorf("seedHash(%d) = %x, want %x", epochLength, got, want)
	}
}

func TestFNV(t *testing.T) {
	cases := []struct{ x, y, want uint32 }{
		{0, 0, 0},
		{1, 0, fnvPrime},
		{0, 1, 1},
	}
	for _, c := range cases {
		if got := fnv(c.x, c.y); got != c.want {
			t.Errorf("fnv(%#x, %#x) = %#x, want %#x", c.x, c.y, got, c.want)
		}
	}
}

func TestGenerateCacheRejectsBadSize(t *testing.T) {
	if generateCache(make([]byte, hashBytes+1), make([]byte, 32)) {
		t.Error("generateCache accepted a misaligned buffer")
	}
	if generateCache(nil, make([]byte, 32)) {
		t.Error("generateCache accepted an empty buffer")
	}
}

func TestGenerateCacheDeterministic(t *testing.T) {
	seed := seedHash(0)
	a := make([]byte, 64*hashBytes)
	b := make([]byte, 64*hashBytes)
	if !generateCache(a, seed) || !generateCache(b, seed) {
		t.Fatal("generateCache reported failure on a valid buffer")
	}
	if !bytes.Equal(a, b) {
		t.Error("generateCache is not deterministic for a fixed seed")
	}
}

func TestGenerateDatasetItemDeterministic(t *testing.T) {
	seed := seedHash(0)
	cache := make([]byte, 64*hashBytes)
	if !generateCache(cache, seed) {
		t.Fatal("generateCache failed")
	}
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	a := generateDatasetItem(cache, 5, keccak512)
	b := generateDatasetItem(cache, 5, keccak512)
	if !bytes.Equal(a, b) {
		t.Error("generateDatasetItem is not deterministic for a fixed index")
	}
	c := generateDatasetItem(cache, 6, keccak512)
	if bytes.Equal(a, c) {
		t.Error("generateDatasetItem produced identical output for different indices")
	}
}

func TestGenerateDatasetMatchesPerItem(t *testing.T) {
	seed := seedHash(0)
	cache := make([]byte, 64*hashBytes)
	if !generateCache(cache, seed) {
		t.Fatal("generateCache failed")
	}
	dest := make([]byte, 16*hashBytes)
	if err := generateDataset(dest, 0, cache, nil); err != nil {
		t.Fatalf("generateDataset failed: %v", err)
	}

	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	for i := uint32(0); i < 16; i++ {
		want := generateDatasetItem(cache, i, keccak512)
		got := nodeAt(dest, i)
		if !bytes.Equal(got, want) {
			t.Errorf("generateDataset item %d = %x, want %x", i, got, want)
		}
	}
}

func TestGenerateDatasetProgressMonotonicAndCancel(t *testing.T) {
	seed := seedHash(0)
	cache := make([]byte, 64*hashBytes)
	if !generateCache(cache, seed) {
		t.Fatal("generateCache failed")
	}
	dest := make([]byte, 512*hashBytes)

	var last uint64
	err := generateDataset(dest, 0, cache, func(percent uint64) bool {
		if percent < last {
			t.Errorf("progress went backwards: %d after %d", percent, last)
		}
		last = percent
		return percent >= 50
	})
	if err != ErrDAGBuildCancelled {
		t.Fatalf("generateDataset error = %v, want ErrDAGBuildCancelled", err)
	}
}

func TestHashimotoLightFullAgree(t *testing.T) {
	block := uint64(0)
	seed := seedHash(block)
	cSize := uint64(64 * hashBytes)
	cache := make([]byte, cSize)
	if !generateCache(cache, seed) {
		t.Fatal("generateCache failed")
	}
	dSize := uint64(16 * mixBytes)
	dataset := make([]byte, dSize)
	if err := generateDataset(dataset, block, cache, nil); err != nil {
		t.Fatalf("generateDataset failed: %v", err)
	}

	headerHash := make([]byte, 32)
	mixLight, resultLight := hashimotoLight(dSize, cache, headerHash, 0)
	mixFull, resultFull := hashimotoFull(dataset, headerHash, 0)

	if !bytes.Equal(mixLight, mixFull) {
		t.Errorf("mix digest mismatch: light %x, full %x", mixLight, mixFull)
	}
	if !bytes.Equal(resultLight, resultFull) {
		t.Errorf("result mismatch: light %x, full %x", resultLight, resultFull)
	}
}
