package mint

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is an immutable read of the sale at one point in time. It is
// replaced wholesale, never patched.
type Snapshot struct {
	Owner          common.Address
	RawSaleStarted bool // publicMintStarted() as reported by the contract
	MintedCount    uint64
	MintedByCaller bool
	Caller         common.Address
	Capacity       uint64
	ReadAt         time.Time
}

// SoldOut reports whether the minted count reached capacity.
func (s Snapshot) SoldOut() bool {
	return s.MintedCount >= s.Capacity
}

// SaleStarted is the sale flag used for display: forced false once sold out.
func (s Snapshot) SaleStarted() bool {
	return s.RawSaleStarted && !s.SoldOut()
}

// IsOwner reports whether addr is the contract owner.
func (s Snapshot) IsOwner(addr common.Address) bool {
	return s.Owner != (common.Address{}) && s.Owner == addr
}

// Remaining is the number of units left to mint.
func (s Snapshot) Remaining() uint64 {
	if s.SoldOut() {
		return 0
	}
	return s.Capacity - s.MintedCount
}
