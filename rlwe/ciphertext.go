package rlwe

import "github.com/privacyfl/hec/crt"

// State is the ciphertext lifecycle state machine from the spec: each
// multiplication consumes one level of multiplicative depth, and crossing
// either the configured max depth or the noise threshold (tracked by
// package noise) transitions a ciphertext to NeedsBootstrap, after which
// the next operation must route through package bootstrap first.
type State int

const (
	Fresh State = iota
	Linear
	NeedsBootstrap
	Stale
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "Fresh"
	case Linear:
		return "Linear"
	case NeedsBootstrap:
		return "NeedsBootstrap"
	case Stale:
		return "Stale"
	default:
		return "Unknown"
	}
}

// Ciphertext is a BGV-style RLWE ciphertext. In the common case it is the
// pair (C0, C1); immediately after a homomorphic multiplication, before
// relinearization, C2 is non-nil and the ciphertext is transiently a
// degree-2 triple.
type Ciphertext struct {
	C0, C1, C2    *crt.Polynomial
	Fingerprint   Fingerprint
	Level         int     // nested multiplicative depth consumed so far
	Noise         float64 // log2 noise-budget estimate, see package noise
	OpsSinceFresh int
	State         State
}

// Degree returns 1 for a normal ciphertext or 2 for a post-multiplication,
// pre-relinearization triple.
func (ct *Ciphertext) Degree() int {
	if ct.C2 != nil {
		return 2
	}
	return 1
}

// CopyNew returns a deep-enough copy for the operations in this repository:
// the *crt.Polynomial pointers are shared (ring data is only ever replaced,
// never mutated in place, by the operations defined on Ciphertext), but the
// struct itself — and therefore its scalar fields — is independent.
func (ct *Ciphertext) CopyNew() *Ciphertext {
	cp := *ct
	return &cp
}
