package main

import (
	"math/big"

	"deplebs-mint-tui/mint"
	"deplebs-mint-tui/rpc"
	"deplebs-mint-tui/wallet"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// clipboardCopiedMsg indicates the account address was copied
type clipboardCopiedMsg struct{}

// txCopiedMsg indicates the transaction panel text was copied
type txCopiedMsg struct{}

// clearClipboardMsg clears clipboard feedback after a delay
type clearClipboardMsg struct{}

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// rpcConnectedMsg contains result of RPC connection attempt
type rpcConnectedMsg struct {
	client  *rpc.Client
	chainID *big.Int
	err     error
}

// sessionStartedMsg is the result of connecting the wallet
type sessionStartedMsg struct {
	ctrl    *mint.Controller
	session wallet.Session
	err     error
}

// snapshotMsg carries a freshly applied sale snapshot
type snapshotMsg struct {
	ctrl *mint.Controller
	snap mint.Snapshot
}

// refreshedMsg is the result of a manual refresh
type refreshedMsg struct {
	ctrl *mint.Controller
	err  error
}

// txDoneMsg is the result of a submission
type txDoneMsg struct {
	op   mint.Op
	conf mint.Confirmation
	err  error
}

// tokenURIMsg is the contract's tokenURI for a freshly minted token
type tokenURIMsg struct {
	id  *big.Int
	uri string
	err error
}

// detailsLoadedMsg contains the connected account's balance
type detailsLoadedMsg struct {
	d rpc.AccountDetails
}
