package fhe

import (
	"github.com/privacyfl/hec/crt"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/ring"
)

// slotIndexMap returns, for each slot position s in [0, n), the NTT
// evaluation index that slot packs into. The n slots split into two rows
// of n/2: row 0 (s < n/2) holds the evaluation at the point with exponent
// 5^-s mod 2n, row 1 (s >= n/2) holds the evaluation at -5^-(s-n/2) mod 2n.
// Galois's group (Z/2nZ)* has order n but is not cyclic (it is Z/2 x
// Z/(n/2)), so no single automorphism can cycle all n evaluation points at
// once; 5 generates the order-n/2 subgroup, so Rotate's X -> X^(5^steps
// mod 2n) map can only ever cycle each row of n/2 independently, which is
// why batching splits into two rows at all. Indexing each row by the
// *inverse* power of 5 (rather than the forward power) is what makes
// Rotate(ct, steps) shift slot s to slot s+steps — i.e. realizes
// decode(decrypt(rotate(encrypt(x), k))) = cyclic_shift(x, k) with the
// "shift right by k" convention spec.md §8's seed case 4 uses
// ([1,2,3,4] rotated by 1 -> [4,1,2,3]) — instead of shifting it the other
// way.
func slotIndexMap(n int) []int {
	twoN := 2 * n
	m := n / 2
	pow5 := make([]int, m)
	pow5[0] = 1 % twoN
	for j := 1; j < m; j++ {
		pow5[j] = (pow5[j-1] * 5) % twoN
	}

	idx := make([]int, n)
	for s := 0; s < m; s++ {
		exp := pow5[(m-s)%m]
		idx[s] = (exp - 1) / 2
		idx[m+s] = (twoN - exp - 1) / 2
	}
	return idx
}

// Encode packs a slot vector of length params.N into a plaintext polynomial
// in coefficient domain, per the spec: "batched encoding uses the inverse
// NTT of the plaintext vector under the plaintext root of unity", each
// slot placed at its NTT index per slotIndexMap rather than packed in raw
// transform order. Each slot value must be less than params.T.
func (s *Scheme) Encode(slots []uint64) (*ring.Poly, error) {
	if len(slots) != s.params.N {
		return nil, herrors.New(herrors.InvalidParameters, "fhe: slot count must equal N")
	}
	plain := s.params.PlainRing
	eval := plain.NewPoly()
	eval.Domain = ring.Evaluation
	for pos, v := range slots {
		if v >= s.params.T {
			return nil, herrors.New(herrors.InvalidParameters, "fhe: slot value out of range for plain modulus")
		}
		eval.Coeffs[s.slotIndex[pos]] = v
	}
	out := plain.NewPoly()
	if err := plain.FromNTT(eval, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode inverts Encode: given a coefficient-domain plaintext polynomial,
// it returns the slot vector, undoing slotIndexMap's packing.
func (s *Scheme) Decode(m *ring.Poly) ([]uint64, error) {
	plain := s.params.PlainRing
	eval := plain.NewPoly()
	if err := plain.ToNTT(m, eval); err != nil {
		return nil, err
	}
	slots := make([]uint64, len(s.slotIndex))
	for pos, idx := range s.slotIndex {
		slots[pos] = eval.Coeffs[idx]
	}
	return slots, nil
}

// liftPlainToCRT lifts a plaintext-domain coefficient vector (values in
// [0, T)) into the ciphertext modulus basis, reducing each coefficient
// modulo every prime in the basis independently. The values themselves are
// not scaled; see scaleByDelta for that.
func liftPlainToCRT(basis *crt.Basis, coeffs []uint64) *crt.Polynomial {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		poly := r.NewPoly()
		for j, c := range coeffs {
			poly.Coeffs[j] = c % r.Q
		}
		limbs[i] = poly
	}
	return &crt.Polynomial{Limbs: limbs}
}

// scaleByConstPerLimb multiplies every limb of x by a distinct per-prime
// constant (constModQi[i] already reduced modulo Rings[i].Q), used to scale
// a lifted plaintext by Delta = floor(Q/T) without ever materializing
// Delta*m as a single big integer.
func scaleByConstPerLimb(basis *crt.Basis, x *crt.Polynomial, constModQi []uint64) *crt.Polynomial {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		out := r.NewPoly()
		r.MulScalar(x.Limbs[i], constModQi[i], out)
		limbs[i] = out
	}
	return &crt.Polynomial{Limbs: limbs}
}
