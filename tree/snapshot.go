package tree

import (
	"fmt"

	"github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is the prover tree frozen at a leaf count. It shares the complete
// nodes with the Prover it was taken from, but only sees the ones that existed
// at that count, so it's safe to use while the prover keeps growing.
type Snapshot struct {
	hasher     Hasher
	height     uint8
	zeroHashes []common.Hash
	levels     [][]common.Hash
	count      uint64
	// frontier[h] is the digest of the node of height h that was only partially
	// filled at count (position count>>h). Only meaningful when count is not a
	// multiple of 2^h.
	frontier []common.Hash
}

func newSnapshot(p *Prover, count uint64) Snapshot {
	levels := make([][]common.Hash, p.height+1)
	for h := range levels {
		complete := count >> h
		levels[h] = p.levels[h][:complete:complete]
	}
	s := Snapshot{
		hasher:     p.hasher,
		height:     p.height,
		zeroHashes: p.zeroHashes,
		levels:     levels,
		count:      count,
	}
	s.frontier = s.buildFrontier()
	return s
}

// buildFrontier computes the partially filled nodes bottom up. A partial node of
// height h has either a complete left child and a partial (or empty) right one,
// or a partial left child and an empty right one, depending on bit h-1 of count.
func (s Snapshot) buildFrontier() []common.Hash {
	frontier := make([]common.Hash, s.height+1)
	for h := uint8(1); h <= s.height; h++ {
		below := s.count & (uint64(1)<<(h-1) - 1)
		pos := s.count >> h
		if s.count&(uint64(1)<<(h-1)) > 0 {
			right := s.zeroHashes[h-1]
			if below > 0 {
				right = frontier[h-1]
			}
			frontier[h] = s.hasher.Hash(s.levels[h-1][2*pos], right)
		} else if below > 0 {
			frontier[h] = s.hasher.Hash(frontier[h-1], s.zeroHashes[h-1])
		}
	}
	return frontier
}

// node returns the digest of the node of height h at position pos, as it was at count
func (s Snapshot) node(h uint8, pos uint64) common.Hash {
	if pos<<h >= s.count {
		// right of the frontier, nothing was added there yet
		return s.zeroHashes[h]
	}
	if pos < uint64(len(s.levels[h])) {
		return s.levels[h][pos]
	}
	return s.frontier[h]
}

// Count returns the amount of leaves of the snapshot
func (s Snapshot) Count() uint64 {
	return s.count
}

// Root returns the root of the tree at the snapshot count
func (s Snapshot) Root() common.Hash {
	return s.node(s.height, 0)
}

// Prove returns the proof of the leaf at leafIndex against the snapshot root
func (s Snapshot) Prove(leafIndex uint64) (types.Proof, error) {
	if leafIndex >= s.count {
		return types.Proof{}, fmt.Errorf(
			"%w: leaf index %d out of bounds, snapshot count is %d", ErrInvalidProofRequest, leafIndex, s.count,
		)
	}
	path := make([]common.Hash, s.height)
	for h := uint8(0); h < s.height; h++ {
		sibling := (leafIndex >> h) ^ 1
		path[h] = s.node(h, sibling)
	}
	return types.Proof{
		Leaf:  s.levels[0][leafIndex],
		Index: uint32(leafIndex),
		Path:  path,
		Root:  s.Root(),
	}, nil
}
