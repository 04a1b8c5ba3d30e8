// Package rlwe holds the Ring-LWE parameter set and key/ciphertext types
// shared by the fhe and keyswitch packages, mirroring how the teacher
// library splits generic RLWE machinery (package rlwe) from the
// BGV-specific scheme layer (package bgv) that encodes/decodes plaintexts
// on top of it.
package rlwe

import (
	"github.com/privacyfl/hec/crt"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/ring"
)

// SecurityLevel is one of the three tiers the spec names in its
// configuration table.
type SecurityLevel int

const (
	Security128 SecurityLevel = 128
	Security192 SecurityLevel = 192
	Security256 SecurityLevel = 256
)

// defaultNTTPrimes60 are 60-bit NTT-friendly primes (p ≡ 1 mod 2*65536),
// so each one remains valid for any ring degree N that is a power of two
// dividing 65536 — exactly the teacher library's Pi60 table
// (ring/primes.go), reduced to the handful of entries this module actually
// needs to compose default coefficient-modulus chains.
var defaultNTTPrimes60 = []uint64{
	576460752308273153, 576460752315482113, 576460752319021057, 576460752319414273,
	576460752321642497, 576460752325705729, 576460752328327169, 576460752329113601,
	576460752329506817, 576460752329900033,
}

// defaultPlainModulus is a 17-bit Fermat-like prime (2^16+1) satisfying
// t ≡ 1 mod 2N for every N this module supports (4096, 8192, 16384), which
// is what makes the default batched encoding available out of the box.
const defaultPlainModulus uint64 = 65537

// DefaultDecompositionBase is the base-w used for key-switching digit
// decomposition unless overridden, matching the spec's "decomposition_base
// (default 2^8)".
const DefaultDecompositionBase uint64 = 1 << 8

// Parameters fully describes one ring instantiation: degree, plaintext
// modulus, ciphertext modulus basis, noise width, and the decomposition
// base used for key switching.
type Parameters struct {
	N                 int
	T                 uint64
	Sigma             float64
	DecompositionBase uint64
	Security          SecurityLevel

	QBasis    *crt.Basis // ciphertext modulus ring (product of QPrimes)
	PlainRing *ring.Ring // ring mod T, used for batched encode/decode
}

// tierDefaults returns (N, number of 60-bit Q primes) for a security tier,
// approximating the spec's q≈2^109 / 2^218 / 2^438 targets with 2, 4 and 8
// chained 60-bit primes respectively (~120, ~240, ~480 bits).
func tierDefaults(level SecurityLevel) (n int, numPrimes int, err error) {
	switch level {
	case Security128:
		return 4096, 2, nil
	case Security192:
		return 8192, 4, nil
	case Security256:
		return 16384, 8, nil
	default:
		return 0, 0, herrors.New(herrors.InvalidParameters, "rlwe: unknown security level")
	}
}

// NewParametersFromSecurityLevel builds the default parameter set for a
// security tier, per the spec's configuration table.
func NewParametersFromSecurityLevel(level SecurityLevel) (Parameters, error) {
	n, numPrimes, err := tierDefaults(level)
	if err != nil {
		return Parameters{}, err
	}
	if numPrimes > len(defaultNTTPrimes60) {
		return Parameters{}, herrors.New(herrors.InvalidParameters, "rlwe: not enough default NTT primes for requested tier")
	}
	return NewParameters(n, defaultPlainModulus, defaultNTTPrimes60[:numPrimes], 3.2, DefaultDecompositionBase, level)
}

// NewParameters builds a custom parameter set, validating that n is a
// power of two >= 1024, that the Q basis primes are distinct, and that T is
// NTT-friendly for batching.
func NewParameters(n int, t uint64, qPrimes []uint64, sigma float64, decompositionBase uint64, level SecurityLevel) (Parameters, error) {
	if n < 1024 || n&(n-1) != 0 {
		return Parameters{}, herrors.New(herrors.InvalidParameters, "rlwe: N must be a power of two >= 1024")
	}
	if len(qPrimes) == 0 {
		return Parameters{}, herrors.New(herrors.InvalidParameters, "rlwe: coefficient modulus basis must not be empty")
	}
	seen := make(map[uint64]bool, len(qPrimes))
	for _, p := range qPrimes {
		if seen[p] {
			return Parameters{}, herrors.New(herrors.InvalidParameters, "rlwe: coefficient modulus primes must be distinct")
		}
		seen[p] = true
	}

	basis, err := crt.NewBasis(n, qPrimes)
	if err != nil {
		return Parameters{}, err
	}

	plainRing, err := ring.NewRing(n, t)
	if err != nil {
		return Parameters{}, err
	}
	if !plainRing.AllowsNTT() {
		return Parameters{}, herrors.New(herrors.InvalidParameters, "rlwe: plaintext modulus must be NTT-friendly (t ≡ 1 mod 2N) for batching")
	}

	if decompositionBase == 0 {
		decompositionBase = DefaultDecompositionBase
	}

	return Parameters{
		N:                 n,
		T:                 t,
		Sigma:             sigma,
		DecompositionBase: decompositionBase,
		Security:          level,
		QBasis:            basis,
		PlainRing:         plainRing,
	}, nil
}

// LogQ returns the approximate bit length of Q = prod(q_i).
func (p Parameters) LogQ() int {
	return p.QBasis.Q.BitLen()
}

// DecompositionLength returns ℓ = ceil(log_w(Q)), the number of
// base-decomposition digits used by key switching.
func (p Parameters) DecompositionLength() int {
	logQ := p.LogQ()
	logW := 0
	for w := p.DecompositionBase; w > 1; w >>= 1 {
		logW++
	}
	if logW == 0 {
		logW = 1
	}
	return (logQ + logW - 1) / logW
}
