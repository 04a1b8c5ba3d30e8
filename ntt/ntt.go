// Package ntt implements the number-theoretic transform over Z_q and the
// complex FFT used to multiply ring elements in O(n log n), following the
// iterative Cooley-Tukey butterfly network structure of the teacher
// library's ring/ntt.go (bit-reversed input order, final exact reduction
// pass), generalized here to operate over any NTT-friendly modulus rather
// than a fixed internal table.
package ntt

import (
	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
)

// Params holds the precomputed twiddle factors for the NTT of a fixed
// length N modulo Q. Requires Q ≡ 1 (mod 2N) so that a primitive 2N-th root
// of unity exists mod Q.
type Params struct {
	N       int
	Q       uint64
	root    uint64   // primitive 2N-th root of unity mod Q
	rootInv uint64   // its inverse
	nInv    uint64   // N^-1 mod Q
	powers  []uint64 // bit-reversed powers of omega = root^2, powers[i] = omega^(bitrev(i))
	invPow  []uint64 // bit-reversed powers of omega^-1
}

// NewParams locates a primitive 2N-th root of unity modulo Q by scanning
// small candidates g = 2, 3, 4, ... and testing g^((Q-1)/(2N)) for the
// defining property ω^N != 1 ∧ ω^(2N) == 1, then precomputes the
// bit-reversed twiddle tables used by Transform/InverseTransform.
func NewParams(n int, q uint64) (*Params, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, herrors.New(herrors.InvalidParameters, "ntt: N must be a power of two")
	}
	twoN := uint64(2 * n)
	if (q-1)%twoN != 0 {
		return nil, herrors.New(herrors.InvalidParameters, "ntt: Q must be congruent to 1 mod 2N")
	}

	exp := (q - 1) / twoN
	var root uint64
	found := false
	for cand := uint64(2); cand < q; cand++ {
		w := arith.PowMod64(cand, exp, q)
		if arith.PowMod64(w, uint64(n), q) != 1 && arith.PowMod64(w, twoN, q) == 1 {
			root = w
			found = true
			break
		}
	}
	if !found {
		return nil, herrors.New(herrors.InvalidParameters, "ntt: no primitive 2N-th root of unity found mod Q")
	}

	rootInv := arith.InverseMod64(root, q)
	nInv := arith.InverseMod64(uint64(n), q)

	p := &Params{N: n, Q: q, root: root, rootInv: rootInv, nInv: nInv}
	// Transform/InverseTransform already apply the negacyclic twist by
	// root^i explicitly before/after the butterfly network, so the
	// network itself must be a plain cyclic NTT driven by omega = root^2
	// (the primitive N-th root), not by root again — using root here
	// would apply the negacyclic twist a second time, merged into the
	// butterfly stage, and silently corrupt every product.
	omega := arith.PowMod64(root, 2, q)
	omegaInv := arith.PowMod64(rootInv, 2, q)
	p.powers = bitReversedPowers(omega, n, q)
	p.invPow = bitReversedPowers(omegaInv, n, q)
	return p, nil
}

// bitReversedPowers returns [w^bitrev(0), w^bitrev(1), ..., w^bitrev(n-1)]
// mod q, which is the twiddle order the iterative Cooley-Tukey butterfly
// network below consumes.
func bitReversedPowers(w uint64, n int, q uint64) []uint64 {
	logN := bitLen(n) - 1
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		r := bitReverse(i, logN)
		out[i] = arith.PowMod64(w, uint64(r), q)
	}
	return out
}

func bitReverse(x, bits int) int {
	r := 0
	for i := 0; i < bits; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

func bitLen(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l + 1
}

// Transform computes the forward NTT of coeffs in place order and returns
// the result in a new slice (coeffs is left untouched), following the
// standard negacyclic trick: multiplying coefficient i by root^i before a
// cyclic NTT realizes a negacyclic convolution, matching the ring's
// X^n+1 quotient.
func (p *Params) Transform(coeffs []uint64) ([]uint64, error) {
	if len(coeffs) != p.N {
		return nil, herrors.New(herrors.InvalidParameters, "ntt: coefficient count mismatch")
	}
	out := make([]uint64, p.N)
	for i, c := range coeffs {
		out[i] = arith.MulMod64(c, arith.PowMod64(p.root, uint64(i), p.Q), p.Q)
	}
	cooleyTukey(out, p.powers, p.Q)
	logN := bitLen(p.N) - 1
	res := make([]uint64, p.N)
	for k, v := range out {
		res[bitReverse(k, logN)] = v
	}
	return res, nil
}

// InverseTransform computes the inverse NTT and unwinds the negacyclic
// twist applied by Transform.
func (p *Params) InverseTransform(evals []uint64) ([]uint64, error) {
	if len(evals) != p.N {
		return nil, herrors.New(herrors.InvalidParameters, "ntt: evaluation count mismatch")
	}
	out := make([]uint64, p.N)
	logN := bitLen(p.N) - 1
	for j, v := range evals {
		out[bitReverse(j, logN)] = v
	}
	gentlemanSande(out, p.invPow, p.Q)
	for i := range out {
		out[i] = arith.MulMod64(out[i], p.nInv, p.Q)
		out[i] = arith.MulMod64(out[i], arith.PowMod64(p.rootInv, uint64(i), p.Q), p.Q)
	}
	return out, nil
}

// Multiply computes the negacyclic product of a and b modulo Q via
// Transform/pointwise-multiply/InverseTransform, i.e.
// inverse_transform(pointwise(transform(a), transform(b))).
func (p *Params) Multiply(a, b []uint64) ([]uint64, error) {
	ta, err := p.Transform(a)
	if err != nil {
		return nil, err
	}
	tb, err := p.Transform(b)
	if err != nil {
		return nil, err
	}
	prod := make([]uint64, p.N)
	for i := range prod {
		prod[i] = arith.MulMod64(ta[i], tb[i], p.Q)
	}
	return p.InverseTransform(prod)
}

// cooleyTukey runs the decimation-in-time butterfly network in place:
// coeffs enter in natural order and exit in bit-reversed order; Transform
// applies the bit-reversal permutation afterwards so its result is in
// natural order.
func cooleyTukey(a []uint64, twiddles []uint64, q uint64) {
	n := len(a)
	for length := n / 2; length >= 1; length /= 2 {
		for start := 0; start < n; start += 2 * length {
			w := twiddles[2*(start/(2*length))]
			for i := start; i < start+length; i++ {
				u := a[i]
				v := arith.MulMod64(a[i+length], w, q)
				a[i] = arith.AddMod64(u, v, q)
				a[i+length] = arith.SubMod64(u, v, q)
			}
		}
	}
}

// gentlemanSande runs the decimation-in-frequency inverse butterfly network,
// the dual of cooleyTukey: it consumes bit-reversed input (InverseTransform
// permutes its natural-order argument first) and produces natural-order
// output (before the final scaling by N^-1 and the negacyclic untwist in
// InverseTransform).
func gentlemanSande(a []uint64, invTwiddles []uint64, q uint64) {
	n := len(a)
	for length := 1; length < n; length *= 2 {
		for start := 0; start < n; start += 2 * length {
			w := invTwiddles[2*(start/(2*length))]
			for i := start; i < start+length; i++ {
				u := a[i]
				v := a[i+length]
				a[i] = arith.AddMod64(u, v, q)
				a[i+length] = arith.MulMod64(arith.SubMod64(u, v, q), w, q)
			}
		}
	}
}
