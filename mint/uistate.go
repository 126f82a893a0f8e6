package mint

// UIState is the single renderable state of the mint screen.
type UIState int

// UI states, in precedence order.
const (
	StateDisconnected UIState = iota
	StateSoldOut
	StateBusy
	StateOwnerPreSale
	StateAwaitingSale
	StateOwnerPostSale
	StatePublicMint
)

func (s UIState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateSoldOut:
		return "sold out"
	case StateBusy:
		return "busy"
	case StateOwnerPreSale:
		return "owner, pre-sale"
	case StateAwaitingSale:
		return "awaiting sale"
	case StateOwnerPostSale:
		return "owner, sale open"
	case StatePublicMint:
		return "public mint"
	default:
		return "unknown"
	}
}

// Inputs is everything the UI state depends on.
type Inputs struct {
	Connected   bool
	SoldOut     bool
	Busy        bool
	IsOwner     bool
	SaleStarted bool
}

// Derive maps inputs to exactly one state; the first matching rule wins.
// Sold out and busy outrank the owner's affordances so the start-sale
// button never shows while sold out or while a transaction is in flight.
func Derive(in Inputs) UIState {
	switch {
	case !in.Connected:
		return StateDisconnected
	case in.SoldOut:
		return StateSoldOut
	case in.Busy:
		return StateBusy
	case in.IsOwner && !in.SaleStarted:
		return StateOwnerPreSale
	case !in.SaleStarted:
		return StateAwaitingSale
	case in.IsOwner:
		return StateOwnerPostSale
	default:
		return StatePublicMint
	}
}

// Action is the one affordance offered in a state.
type Action int

// Actions.
const (
	ActionNone Action = iota
	ActionConnect
	ActionSubmit
)

// Action returns the affordance for s and, for ActionSubmit, the operation.
func (s UIState) Action() (Action, Op) {
	switch s {
	case StateDisconnected:
		return ActionConnect, 0
	case StateOwnerPreSale:
		return ActionSubmit, OpStartSale
	case StateOwnerPostSale:
		return ActionSubmit, OpWithdraw
	case StatePublicMint:
		return ActionSubmit, OpMint
	default:
		return ActionNone, 0
	}
}
