package model

import (
	"fmt"
	"strings"
	"time"
)

// Block is the record of one successful mine.
type Block struct {
	Height       uint32
	Timestamp    time.Time
	Miner        string
	Transactions []*Transaction
	TotalFees    Amount
	// CoinbaseID is empty when no fees were collected and no coinbase output was created.
	CoinbaseID string
}

func (b *Block) TransactionIDs() []string {
	ids := make([]string, 0, len(b.Transactions))

	for _, tx := range b.Transactions {
		ids = append(ids, tx.ID)
	}

	return ids
}

// CoinbaseOutpoint returns the outpoint of the miner reward, if there is one.
func (b *Block) CoinbaseOutpoint() (Outpoint, bool) {
	if b.CoinbaseID == "" {
		return Outpoint{}, false
	}

	return Outpoint{TxID: b.CoinbaseID, Index: 0}, true
}

func (b *Block) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Block %d\n\t", b.Height))
	sb.WriteString(fmt.Sprintf("Time:         %s\n\t", b.Timestamp.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Miner:        %s\n\t", b.Miner))
	sb.WriteString(fmt.Sprintf("Transactions: %d\n\t", len(b.Transactions)))
	sb.WriteString(fmt.Sprintf("Total fees:   %s\n\t", b.TotalFees))
	sb.WriteString(fmt.Sprintf("Coinbase:     %s\n", b.CoinbaseID))

	return sb.String()
}
