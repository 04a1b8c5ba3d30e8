package secureagg

import (
	"crypto/sha256"
	"encoding/binary"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/holiman/uint256"

	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/herrors"
	"github.com/zeebo/blake3"
)

// State is the round's explicit lifecycle, replacing the cyclic
// event-emitter chain of a federated aggregator with typed transitions.
type State int

const (
	Init State = iota
	SharesDistributed
	UpdatesReceived
	Reconstructing
	Finalized
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case SharesDistributed:
		return "SharesDistributed"
	case UpdatesReceived:
		return "UpdatesReceived"
	case Reconstructing:
		return "Reconstructing"
	case Finalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}

// ClientID identifies a participant in one aggregation round.
type ClientID string

// Commitment is a binding commitment over one client's share material.
type Commitment [32]byte

// clientState is the coordinator's per-client bookkeeping for one round.
// Round models the whole secure-aggregation protocol running in one
// process (as the teacher library's multiparty/drlwe packages simulate
// several cooperating parties within a single test binary), so it holds
// every client's masking key directly rather than requiring a separate
// client-side process per participant; a real deployment would keep
// maskingKey local to each client and call the package-level helpers
// (splitSecret's shares, DeriveMask, VerifyShare) from there instead.
type clientState struct {
	maskingKey        *uint256.Int
	nonce             [16]byte
	shares            []Share // this client's shares of its own key, indexed by recipient
	reconstructShares []Share // shares submitted back in ReconstructMasks
	submitted         bool
}

// Round coordinates one secure-aggregation round across a fixed client
// set, following the state machine Init -> SharesDistributed ->
// UpdatesReceived -> Reconstructing -> Finalized.
type Round struct {
	state     State
	threshold int
	clients   map[ClientID]*clientState
	order     []ClientID
	startedAt time.Time

	commitments map[ClientID][]Commitment
	maskedSum   []float64
	dropped     map[ClientID]bool
	survivors   map[ClientID]bool
}

// Init begins a round for the given client set with Shamir reconstruction
// threshold t: it generates a per-client masking key and nonce, splits
// each key into Shamir shares with a commitment per share, and returns the
// per-client share bundle the caller is responsible for distributing over
// a secure channel.
func Init(clients []ClientID, t int, prng arith.PRNG) (*Round, map[ClientID][]Share, map[ClientID][]Commitment, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	n := len(clients)
	if t < 1 || t > n {
		return nil, nil, nil, herrors.New(herrors.InvalidParameters, "secureagg: threshold must be in [1, n]")
	}

	r := &Round{
		state:       Init,
		threshold:   t,
		clients:     make(map[ClientID]*clientState, n),
		order:       append([]ClientID(nil), clients...),
		startedAt:   time.Now(),
		commitments: make(map[ClientID][]Commitment, n),
		dropped:     make(map[ClientID]bool),
		survivors:   make(map[ClientID]bool),
	}

	sharesByHolder := make(map[ClientID][]Share, n)
	commitmentsByOwner := make(map[ClientID][]Commitment, n)

	for _, c := range clients {
		keyBig, err := randomFieldElement(prng)
		if err != nil {
			return nil, nil, nil, err
		}
		var nonce [16]byte
		if _, err := prng.Read(nonce[:]); err != nil {
			return nil, nil, nil, herrors.Wrap(herrors.Internal, "secureagg: sampling nonce", err)
		}

		shares, err := splitSecret(keyBig, n, t, prng)
		if err != nil {
			return nil, nil, nil, err
		}
		commitments := make([]Commitment, len(shares))
		for i, sh := range shares {
			commitments[i] = commitShare(sh)
		}

		cs := &clientState{maskingKey: keyBig, nonce: nonce, shares: shares}
		r.clients[c] = cs
		commitmentsByOwner[c] = commitments

		for i, holder := range clients {
			sharesByHolder[holder] = append(sharesByHolder[holder], shares[i])
		}
	}

	r.state = SharesDistributed
	return r, sharesByHolder, commitmentsByOwner, nil
}

// commitShare computes a binding commitment over one Shamir share: a
// blake3 hash of the share's (x, y) encoding.
func commitShare(sh Share) Commitment {
	h := blake3.New()
	h.Write([]byte{sh.X})
	yBytes := sh.Y.Bytes32()
	h.Write(yBytes[:])
	sum := h.Sum(nil)
	var c Commitment
	copy(c[:], sum)
	return c
}

// VerifyShare checks a received share against its advertised commitment,
// returning ShareVerificationFailed on mismatch per the spec's hard-reject
// rule.
func VerifyShare(sh Share, want Commitment) error {
	got := commitShare(sh)
	if !arith.ConstantTimeEq(got[:], want[:]) {
		return herrors.New(herrors.ShareVerificationFailed, "secureagg: share does not match its commitment")
	}
	return nil
}

// DeriveMask produces the deterministic pseudo-random mask vector for one
// client's layer, using HKDF over the client's masking key with the
// layer index folded into the HKDF info parameter as the counter-mode
// position, matching the spec's "deterministic pseudo-random mask from
// (key, nonce, layer_index)".
func DeriveMask(maskingKey []byte, nonce [16]byte, layerIndex, length int) ([]float64, error) {
	info := make([]byte, 4)
	binary.LittleEndian.PutUint32(info, uint32(layerIndex))

	reader := hkdf.New(sha256.New, maskingKey, nonce[:], info)
	buf := make([]byte, length*8)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, herrors.Wrap(herrors.Internal, "secureagg: deriving mask stream", err)
	}

	out := make([]float64, length)
	for i := 0; i < length; i++ {
		bits := binary.LittleEndian.Uint64(buf[i*8 : (i+1)*8])
		// Map the 64 pseudo-random bits onto [-1, 1), a uniform-enough
		// range for additive masking of bounded model weights.
		out[i] = (float64(bits>>11)/float64(1<<53))*2 - 1
	}
	return out, nil
}

// State reports the round's current lifecycle stage.
func (r *Round) State() State { return r.state }

// CheckTimeout fails with RoundTimeout once maxAge has elapsed since Init,
// letting a coordinator abandon a round whose clients have gone silent
// instead of blocking on ReconstructMasks forever.
func (r *Round) CheckTimeout(maxAge time.Duration) error {
	if time.Since(r.startedAt) > maxAge {
		return herrors.New(herrors.RoundTimeout, "secureagg: round exceeded its maximum age")
	}
	return nil
}
