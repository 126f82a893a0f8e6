package mint

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotSoldOutForcesSaleClosed(t *testing.T) {
	s := Snapshot{RawSaleStarted: true, MintedCount: 500, Capacity: 500}
	assert.True(t, s.SoldOut())
	assert.False(t, s.SaleStarted())
	assert.Zero(t, s.Remaining())

	s.MintedCount = 499
	assert.False(t, s.SoldOut())
	assert.True(t, s.SaleStarted())
	assert.Equal(t, uint64(1), s.Remaining())

	s.MintedCount = 501
	assert.True(t, s.SoldOut())
	assert.Zero(t, s.Remaining())
}

func TestSnapshotIsOwner(t *testing.T) {
	s := Snapshot{Owner: ownerAddr}
	assert.True(t, s.IsOwner(ownerAddr))
	assert.False(t, s.IsOwner(buyerAddr))

	var empty Snapshot
	assert.False(t, empty.IsOwner(common.Address{}))
}
