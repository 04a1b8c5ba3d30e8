package zkp

import (
	"encoding/binary"
	"math/big"

	"github.com/zeebo/blake3"
)

// hashToBig hashes every byte slice in parts (each length-prefixed so the
// boundaries between them are unambiguous) with blake3 and returns the
// digest as a big-endian integer with at least outBits bits of entropy,
// concatenating successive blake3(counter || ...) blocks when outBits
// exceeds one 32-byte digest.
func hashToBig(outBits int, parts ...[]byte) *big.Int {
	needBytes := (outBits + 7) / 8
	if needBytes < 32 {
		needBytes = 32
	}

	var out []byte
	for counter := uint32(0); len(out) < needBytes; counter++ {
		h := blake3.New()
		var ctrBuf [4]byte
		binary.BigEndian.PutUint32(ctrBuf[:], counter)
		h.Write(ctrBuf[:])

		var lenBuf [8]byte
		for _, p := range parts {
			binary.BigEndian.PutUint64(lenBuf[:], uint64(len(p)))
			h.Write(lenBuf[:])
			h.Write(p)
		}
		out = append(out, h.Sum(nil)...)
	}
	return new(big.Int).SetBytes(out[:needBytes])
}

// challenge computes the Fiat-Shamir challenge c = H(parts...) mod q,
// binding every supplied public input (commitments, group description,
// auxiliary context like a ciphertext's bytes) into one hash per spec's
// soundness requirement that the challenge cover the full statement, not
// just the prover's first message.
func (grp *Group) challenge(parts ...[]byte) *big.Int {
	c := hashToBig(grp.Q.BitLen()+64, parts...)
	return c.Mod(c, grp.Q)
}
