package eligibility

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Tree is a sorted-pair keccak256 Merkle tree over identity leaves. It
// exists to mint roots and proofs for whitelists; verification lives in
// MerkleVerifier.
type Tree struct {
	levels [][]common.Hash
	leaves map[common.Address]int
}

// NewTree builds a tree over the given identities. Leaves are sorted so the
// root is independent of input order; an odd level carries its last node up
// unhashed.
func NewTree(identities []common.Address) (*Tree, error) {
	if len(identities) == 0 {
		return nil, fmt.Errorf("eligibility: empty identity set")
	}

	type leaf struct {
		addr common.Address
		hash common.Hash
	}
	leaves := make([]leaf, 0, len(identities))
	for _, addr := range identities {
		leaves = append(leaves, leaf{addr: addr, hash: LeafFor(addr)})
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i].hash[:], leaves[j].hash[:]) < 0
	})

	level := make([]common.Hash, len(leaves))
	index := make(map[common.Address]int, len(leaves))
	for i, l := range leaves {
		level[i] = l.hash
		index[l.addr] = i
	}

	levels := [][]common.Hash{level}
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels, leaves: index}, nil
}

// Root returns the tree root.
func (t *Tree) Root() common.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// ProofFor returns the sibling path for an identity, or an error if the
// identity is not in the set.
func (t *Tree) ProofFor(identity common.Address) ([]common.Hash, error) {
	pos, ok := t.leaves[identity]
	if !ok {
		return nil, fmt.Errorf("eligibility: %s not in identity set", identity.Hex())
	}

	proof := make([]common.Hash, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := pos ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		pos /= 2
	}
	return proof, nil
}
