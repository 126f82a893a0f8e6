package mint

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want UIState
	}{
		{"not connected beats everything", Inputs{SoldOut: true, Busy: true, IsOwner: true}, StateDisconnected},
		{"sold out beats owner", Inputs{Connected: true, SoldOut: true, IsOwner: true}, StateSoldOut},
		{"sold out beats busy", Inputs{Connected: true, SoldOut: true, Busy: true}, StateSoldOut},
		{"busy beats owner pre-sale", Inputs{Connected: true, Busy: true, IsOwner: true}, StateBusy},
		{"owner before sale", Inputs{Connected: true, IsOwner: true}, StateOwnerPreSale},
		{"visitor before sale", Inputs{Connected: true}, StateAwaitingSale},
		{"owner during sale", Inputs{Connected: true, IsOwner: true, SaleStarted: true}, StateOwnerPostSale},
		{"visitor during sale", Inputs{Connected: true, SaleStarted: true}, StatePublicMint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.in))
		})
	}
}

func TestDeriveAllInputs(t *testing.T) {
	for mask := 0; mask < 32; mask++ {
		in := Inputs{
			Connected:   mask&1 != 0,
			SoldOut:     mask&2 != 0,
			Busy:        mask&4 != 0,
			IsOwner:     mask&8 != 0,
			SaleStarted: mask&16 != 0,
		}
		t.Run(fmt.Sprintf("%+v", in), func(t *testing.T) {
			got := Derive(in)
			action, op := got.Action()

			if !in.Connected {
				assert.Equal(t, StateDisconnected, got)
				assert.Equal(t, ActionConnect, action)
				return
			}
			if in.SoldOut {
				assert.Equal(t, StateSoldOut, got)
				assert.Equal(t, ActionNone, action)
				return
			}
			if in.Busy {
				assert.Equal(t, StateBusy, got)
				assert.Equal(t, ActionNone, action)
				return
			}

			assert.Equal(t, ActionSubmit == action && op == OpStartSale, in.IsOwner && !in.SaleStarted)
			assert.Equal(t, ActionSubmit == action && op == OpWithdraw, in.IsOwner && in.SaleStarted)
			assert.Equal(t, ActionSubmit == action && op == OpMint, !in.IsOwner && in.SaleStarted)
			assert.Equal(t, ActionNone == action, !in.IsOwner && !in.SaleStarted)
		})
	}
}

func TestUIStateStrings(t *testing.T) {
	for s := StateDisconnected; s <= StatePublicMint; s++ {
		assert.NotEqual(t, "unknown", s.String())
	}
	assert.Equal(t, "unknown", UIState(99).String())
}
