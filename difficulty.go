package ddmhash

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// CheckDifficulty reports whether hash meets boundary: true iff hash,
// read as a big-endian 256-bit integer, is less than or equal to
// boundary. Both are compared byte-lexicographically, which is
// equivalent since both are fixed-width big-endian encodings.
func CheckDifficulty(hash, boundary common.Hash) bool {
	for i := range hash {
		switch {
		case hash[i] < boundary[i]:
			return true
		case hash[i] > boundary[i]:
			return false
		}
	}
	return true
}

// QuickHash recomputes the final proof-of-work value from a header
// hash, nonce and a previously computed mix digest, without touching
// any cache or dataset. It lets a verifier that already trusts mixHash
// (for example because Light.Compute produced it moments earlier)
// cheaply re-derive Result, and lets an independent caller check that
// a claimed mixHash is at least internally consistent with a claimed
// result before paying for a full recomputation.
func QuickHash(headerHash common.Hash, nonce uint64, mixHash common.Hash) common.Hash {
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	keccak256 := makeHasher(sha3.NewLegacyKeccak256())

	seed := make([]byte, 40)
	copy(seed, headerHash.Bytes())
	putUint64LE(seed[32:], nonce)

	s := make([]byte, hashBytes)
	keccak512(s, seed)

	digest := make([]byte, 96)
	copy(digest[:64], s)
	copy(digest[64:], mixHash.Bytes())

	out := make([]byte, 32)
	keccak256(out, digest)
	return common.BytesToHash(out)
}

// QuickCheckDifficulty recomputes the proof-of-work value from
// (headerHash, nonce, mixHash) via QuickHash and checks it against
// boundary, without needing any cache or dataset. This is the cheap
// verification path a full node uses to reject an invalid solution
// before running an expensive recomputation.
func QuickCheckDifficulty(headerHash common.Hash, nonce uint64, mixHash, boundary common.Hash) bool {
	return CheckDifficulty(QuickHash(headerHash, nonce, mixHash), boundary)
}
