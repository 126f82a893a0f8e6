package details

import (
	"testing"
	"time"

	"deplebs-mint-tui/mint"

	"github.com/stretchr/testify/assert"
)

func TestRenderRemaining(t *testing.T) {
	d := Data{
		State:       mint.StatePublicMint,
		Address:     "0x00000000000000000000000000000000000000bb",
		Snapshot:    mint.Snapshot{MintedCount: 137, Capacity: 500, ReadAt: time.Now()},
		HasSnapshot: true,
	}
	out := Render(d)
	assert.Contains(t, out, "137/500 DePlebs have been minted")
	assert.Contains(t, out, "363 left")

	d.State = mint.StateSoldOut
	d.Snapshot.MintedCount = 500
	out = Render(d)
	assert.Contains(t, out, "500/500 DePlebs have been minted")
	assert.NotContains(t, out, "0 left")
}
