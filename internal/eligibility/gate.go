package eligibility

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Verifier is the external proof-verification capability.
type Verifier interface {
	Verify(proof []common.Hash, root, leaf common.Hash) bool
}

// MerkleVerifier checks sorted-pair keccak256 Merkle proofs, the scheme used
// by on-chain whitelist roots.
type MerkleVerifier struct{}

// Verify folds the proof into the leaf and compares against the root.
func (MerkleVerifier) Verify(proof []common.Hash, root, leaf common.Hash) bool {
	computed := leaf
	for _, node := range proof {
		computed = hashPair(computed, node)
	}
	return computed == root
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return crypto.Keccak256Hash(a[:], b[:])
	}
	return crypto.Keccak256Hash(b[:], a[:])
}

// LeafFor derives the whitelist leaf for an identity.
func LeafFor(identity common.Address) common.Hash {
	return crypto.Keccak256Hash(identity.Bytes())
}

// Gate toggles between open-to-all and whitelist-only access. A nil root
// means public mode.
type Gate struct {
	verifier Verifier
	root     *common.Hash
}

// NewGate builds a gate; a nil verifier falls back to MerkleVerifier.
func NewGate(verifier Verifier, root *common.Hash) *Gate {
	if verifier == nil {
		verifier = MerkleVerifier{}
	}
	return &Gate{verifier: verifier, root: root}
}

// PrivateMode reports whether a whitelist root is configured.
func (g *Gate) PrivateMode() bool { return g.root != nil }

// Root returns the configured root, or nil in public mode.
func (g *Gate) Root() *common.Hash {
	if g.root == nil {
		return nil
	}
	root := *g.root
	return &root
}

// SetRoot replaces the whitelist root; nil switches to public mode.
func (g *Gate) SetRoot(root *common.Hash) {
	if root == nil {
		g.root = nil
		return
	}
	r := *root
	g.root = &r
}

// IsEligible reports whether the identity may open. In public mode every
// identity passes; in private mode the proof must connect the identity's
// leaf to the root.
func (g *Gate) IsEligible(identity common.Address, proof []common.Hash) bool {
	if g.root == nil {
		return true
	}
	return g.verifier.Verify(proof, *g.root, LeafFor(identity))
}
