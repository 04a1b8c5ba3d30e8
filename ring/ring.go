// Package ring implements negacyclic polynomial arithmetic over a single
// modulus, R_q = Z_q[X]/(X^N+1): the "Ring element" of the spec's data
// model. Multi-prime (RNS/CRT) composition of several Ring instances is the
// responsibility of package crt; Ring itself only ever sees one modulus,
// following the teacher library's Ring{N, Modulus, ...} struct shape
// (ring/ring.go) reduced to a single limb.
package ring

import (
	"encoding/binary"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/ntt"
)

// Ring holds the precomputed NTT parameters for a fixed degree N and
// modulus Q, and exposes the arithmetic operations on Poly values defined
// over it.
type Ring struct {
	N      int
	Q      uint64
	ntt    *ntt.Params
	hasNTT bool
}

// NewRing constructs a Ring of degree N (a power of two >= 1024 per the
// spec's parameter constraints, though smaller degrees are accepted here so
// tests can run cheaply) and modulus Q. If Q is NTT-friendly (Q ≡ 1 mod 2N)
// the Ring transparently uses the NTT for Multiply; otherwise Multiply
// falls back to schoolbook convolution.
func NewRing(n int, q uint64) (*Ring, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, herrors.New(herrors.InvalidParameters, "ring: N must be a power of two")
	}
	r := &Ring{N: n, Q: q}
	params, err := ntt.NewParams(n, q)
	if err == nil {
		r.ntt = params
		r.hasNTT = true
	}
	return r, nil
}

// AllowsNTT reports whether this Ring's modulus supports the NTT fast path.
func (r *Ring) AllowsNTT() bool { return r.hasNTT }

// NewPoly returns the zero polynomial of this Ring.
func (r *Ring) NewPoly() *Poly {
	return &Poly{Coeffs: make([]uint64, r.N)}
}

// Domain distinguishes a Poly's representation, matching the spec's
// requirement that "NTT-domain and coefficient-domain forms are
// distinguishable and mutually convertible".
type Domain int

const (
	// Coefficient is the standard coefficient-vector representation.
	Coefficient Domain = iota
	// Evaluation is the NTT (point-value) representation.
	Evaluation
)

// Poly is a polynomial in R_q, represented either in coefficient or NTT
// (evaluation) domain. Equality comparison (Equal) is domain-aware: two
// Polys in different domains are never equal even if one would transform
// into the other, since comparing them would otherwise silently hide a
// caller bug.
type Poly struct {
	Coeffs []uint64
	Domain Domain
}

// CopyNew returns a deep copy of p.
func (p *Poly) CopyNew() *Poly {
	c := make([]uint64, len(p.Coeffs))
	copy(c, p.Coeffs)
	return &Poly{Coeffs: c, Domain: p.Domain}
}

// Equal reports whether p and other hold the same coefficients in the same
// domain.
func (p *Poly) Equal(other *Poly) bool {
	if p.Domain != other.Domain || len(p.Coeffs) != len(other.Coeffs) {
		return false
	}
	for i := range p.Coeffs {
		if p.Coeffs[i] != other.Coeffs[i] {
			return false
		}
	}
	return true
}

// Add computes a+b coefficient-wise and stores the result in out. All three
// must be in the same domain and have length N.
func (r *Ring) Add(a, b, out *Poly) error {
	if err := r.checkSameDomain(a, b); err != nil {
		return err
	}
	for i := 0; i < r.N; i++ {
		out.Coeffs[i] = arith.AddMod64(a.Coeffs[i], b.Coeffs[i], r.Q)
	}
	out.Domain = a.Domain
	return nil
}

// Sub computes a-b coefficient-wise and stores the result in out.
func (r *Ring) Sub(a, b, out *Poly) error {
	if err := r.checkSameDomain(a, b); err != nil {
		return err
	}
	for i := 0; i < r.N; i++ {
		out.Coeffs[i] = arith.SubMod64(a.Coeffs[i], b.Coeffs[i], r.Q)
	}
	out.Domain = a.Domain
	return nil
}

// Negate computes -a coefficient-wise and stores the result in out.
func (r *Ring) Negate(a, out *Poly) {
	for i := 0; i < r.N; i++ {
		out.Coeffs[i] = arith.SubMod64(0, a.Coeffs[i], r.Q)
	}
	out.Domain = a.Domain
}

// MulScalar multiplies every coefficient of a by the scalar k mod Q.
func (r *Ring) MulScalar(a *Poly, k uint64, out *Poly) {
	k %= r.Q
	for i := 0; i < r.N; i++ {
		out.Coeffs[i] = arith.MulMod64(a.Coeffs[i], k, r.Q)
	}
	out.Domain = a.Domain
}

// Multiply computes the negacyclic product a*b mod (X^N+1, Q). It routes
// through the NTT when the Ring's modulus supports it, and falls back to
// O(n^2) schoolbook convolution with the negacyclic sign flip otherwise.
func (r *Ring) Multiply(a, b, out *Poly) error {
	if err := r.checkSameDomain(a, b); err != nil {
		return err
	}
	if a.Domain == Evaluation {
		// Pointwise multiplication in the evaluation domain.
		for i := 0; i < r.N; i++ {
			out.Coeffs[i] = arith.MulMod64(a.Coeffs[i], b.Coeffs[i], r.Q)
		}
		out.Domain = Evaluation
		return nil
	}

	if r.hasNTT {
		prod, err := r.ntt.Multiply(a.Coeffs, b.Coeffs)
		if err != nil {
			return err
		}
		copy(out.Coeffs, prod)
		out.Domain = Coefficient
		return nil
	}

	out.Coeffs = r.schoolbookMultiply(a.Coeffs, b.Coeffs)
	out.Domain = Coefficient
	return nil
}

// schoolbookMultiply computes the O(n^2) negacyclic convolution, used only
// when the modulus does not admit an NTT.
func (r *Ring) schoolbookMultiply(a, b []uint64) []uint64 {
	n := r.N
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		if a[i] == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			if b[j] == 0 {
				continue
			}
			k := i + j
			term := arith.MulMod64(a[i], b[j], r.Q)
			if k >= n {
				// X^n = -1 in R_q = Z_q[X]/(X^n+1).
				k -= n
				term = arith.SubMod64(0, term, r.Q)
			}
			out[k] = arith.AddMod64(out[k], term, r.Q)
		}
	}
	return out
}

// ToNTT converts a from coefficient to evaluation domain and stores the
// result in out.
func (r *Ring) ToNTT(a, out *Poly) error {
	if !r.hasNTT {
		return herrors.New(herrors.InvalidParameters, "ring: modulus does not support NTT")
	}
	if a.Domain != Coefficient {
		return herrors.New(herrors.InvalidParameters, "ring: ToNTT requires a coefficient-domain input")
	}
	vals, err := r.ntt.Transform(a.Coeffs)
	if err != nil {
		return err
	}
	copy(out.Coeffs, vals)
	out.Domain = Evaluation
	return nil
}

// FromNTT converts a from evaluation to coefficient domain and stores the
// result in out.
func (r *Ring) FromNTT(a, out *Poly) error {
	if !r.hasNTT {
		return herrors.New(herrors.InvalidParameters, "ring: modulus does not support NTT")
	}
	if a.Domain != Evaluation {
		return herrors.New(herrors.InvalidParameters, "ring: FromNTT requires an evaluation-domain input")
	}
	vals, err := r.ntt.InverseTransform(a.Coeffs)
	if err != nil {
		return err
	}
	copy(out.Coeffs, vals)
	out.Domain = Coefficient
	return nil
}

func (r *Ring) checkSameDomain(a, b *Poly) error {
	if a.Domain != b.Domain {
		return herrors.New(herrors.InvalidParameters, "ring: operands in different domains")
	}
	if len(a.Coeffs) != r.N || len(b.Coeffs) != r.N {
		return herrors.New(herrors.InvalidParameters, "ring: operand length mismatch")
	}
	return nil
}

// MarshalBinary serializes p as little-endian 64-bit words, one per
// coefficient: exactly 8*N bytes, matching the spec's wire format.
func (p *Poly) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8*len(p.Coeffs))
	for i, c := range p.Coeffs {
		binary.LittleEndian.PutUint64(out[i*8:], c)
	}
	return out, nil
}

// UnmarshalBinaryWithModulus deserializes b into p, using q to reject any
// coefficient >= q (the spec's deserialization invariant). The Ring itself
// is not required since this is a pure decode step, but q must be supplied
// by the caller who knows which Ring the bytes belong to.
func (p *Poly) UnmarshalBinaryWithModulus(b []byte, q uint64) error {
	if len(b)%8 != 0 {
		return herrors.New(herrors.InvalidCiphertext, "ring: serialized polynomial length not a multiple of 8")
	}
	n := len(b) / 8
	coeffs := make([]uint64, n)
	for i := 0; i < n; i++ {
		c := binary.LittleEndian.Uint64(b[i*8:])
		if c >= q {
			return herrors.New(herrors.InvalidCiphertext, "ring: coefficient out of range for modulus")
		}
		coeffs[i] = c
	}
	p.Coeffs = coeffs
	p.Domain = Coefficient
	return nil
}
