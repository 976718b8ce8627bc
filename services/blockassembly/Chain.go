package blockassembly

import (
	"sync"

	"github.com/bsv-blockchain/ledgersim/model"
)

// Chain holds the mined blocks. The height starts at 0 and grows by one per
// block; a fresh Chain is a fresh ledger.
type Chain struct {
	mu     sync.RWMutex
	blocks []*model.Block
}

func NewChain() *Chain {
	return &Chain{}
}

func (c *Chain) Height() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	//nolint:gosec // one block per mine call
	return uint32(len(c.blocks))
}

// Tip returns the last mined block, or nil before the first one.
func (c *Chain) Tip() *model.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return nil
	}

	return c.blocks[len(c.blocks)-1]
}

// Block returns the block at height, heights start at 1.
func (c *Chain) Block(height uint32) (*model.Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if height == 0 || int(height) > len(c.blocks) {
		return nil, false
	}

	return c.blocks[height-1], true
}

func (c *Chain) append(block *model.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blocks = append(c.blocks, block)
}
