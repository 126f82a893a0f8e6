package mint

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"

	"deplebs-mint-tui/errs"
	"deplebs-mint-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Op is a state-changing contract action.
type Op int

// Operations.
const (
	OpStartSale Op = iota + 1
	OpMint
	OpWithdraw
)

func (o Op) String() string {
	switch o {
	case OpStartSale:
		return "start sale"
	case OpMint:
		return "mint"
	case OpWithdraw:
		return "withdraw"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Confirmation describes an included transaction.
type Confirmation struct {
	Op       Op
	TxHash   common.Hash
	Block    *big.Int
	Snapshot Snapshot // post-confirmation snapshot, valid when Synced
	Synced   bool
}

// Controller owns the wallet session and the latest snapshot for the
// lifetime of the program and gates every write behind a busy flag.
type Controller struct {
	cfg    Config
	conn   *wallet.Manager
	binder Binder
	reader *StateReader
	logger *log.Logger

	busy atomic.Bool

	mu         sync.RWMutex
	snapshot   *Snapshot
	syncer     *syncer
	gen        uint64             // bumped by Teardown
	cancelInit context.CancelFunc // cancels a connect in progress

	updates chan Snapshot
}

// NewController wires a controller. Call Init to connect.
func NewController(cfg Config, conn *wallet.Manager, binder Binder, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:     cfg,
		conn:    conn,
		binder:  binder,
		reader:  NewStateReader(conn, binder, cfg.Capacity, logger.WithPrefix("reader")),
		logger:  logger.WithPrefix("mint"),
		updates: make(chan Snapshot, 1),
	}
}

// Config returns the sale parameters in force.
func (c *Controller) Config() Config { return c.cfg }

// Init connects the wallet, starts periodic sync and performs the first
// poll. An existing session is torn down first. A failed first poll is
// logged; the session stays up and the next tick retries.
//
// A Teardown while the wallet prompt is open cancels the connect; if the
// wallet answers anyway the session is dropped and ErrNotConnected returned.
func (c *Controller) Init(ctx context.Context) (wallet.Session, error) {
	c.Teardown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.mu.Lock()
	gen := c.gen
	c.cancelInit = cancel
	c.mu.Unlock()

	s, err := c.conn.Connect(ctx)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		if err == nil {
			c.conn.Disconnect()
		}
		c.logger.Debug("connect abandoned by teardown")
		return wallet.Session{}, errs.WithMessage(errs.ErrNotConnected, "connect", "wallet disconnected while connecting")
	}
	c.cancelInit = nil
	if err != nil {
		c.mu.Unlock()
		return wallet.Session{}, err
	}
	c.syncer = startSyncer(c.cfg.PollInterval, c.reader.Poll, c.apply, c.logger.WithPrefix("sync"))
	c.mu.Unlock()

	if _, err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial sync failed", "err", err)
	}
	return s, nil
}

// Teardown stops periodic sync, abandons a connect in progress, drops the
// snapshot and disconnects.
func (c *Controller) Teardown() {
	c.mu.Lock()
	c.gen++
	sy := c.syncer
	c.syncer = nil
	cancel := c.cancelInit
	c.cancelInit = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sy != nil {
		sy.stop()
	}

	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()

	c.conn.Disconnect()
}

// Refresh performs a one-shot poll through the sync loop.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.RLock()
	sy := c.syncer
	c.mu.RUnlock()
	if sy == nil {
		return Snapshot{}, errs.ErrNotConnected
	}
	return sy.refresh(ctx)
}

// Updates delivers every applied snapshot. Only the latest undelivered one
// is kept.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

// Session returns the wallet session, if connected.
func (c *Controller) Session() (wallet.Session, bool) {
	return c.conn.Session()
}

// Snapshot returns the latest snapshot, if one was read.
func (c *Controller) Snapshot() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

// Busy reports whether a submission is outstanding.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Inputs gathers the current UI inputs.
func (c *Controller) Inputs() Inputs {
	sess, connected := c.conn.Session()
	in := Inputs{Connected: connected, Busy: c.Busy()}
	if snap, ok := c.Snapshot(); ok && connected {
		in.SoldOut = snap.SoldOut()
		in.IsOwner = snap.IsOwner(sess.Address)
		in.SaleStarted = snap.SaleStarted()
	}
	return in
}

// State derives the UI state from live controller state.
func (c *Controller) State() UIState {
	return Derive(c.Inputs())
}

func (c *Controller) apply(s Snapshot) {
	c.mu.Lock()
	c.snapshot = &s
	c.mu.Unlock()

	select {
	case c.updates <- s:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- s:
	default:
	}
}

// Submission is a claimed busy slot for one operation.
type Submission struct {
	c   *Controller
	op  Op
	ran atomic.Bool
}

// Begin claims the busy flag for op. It fails with errs.ErrBusy while
// another submission is outstanding. The returned submission must be Run.
func (c *Controller) Begin(op Op) (*Submission, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, errs.Wrap(errs.ErrBusy, op.String(), nil)
	}
	c.logger.Debug("busy", "op", op)
	return &Submission{c: c, op: op}, nil
}

// Op returns the operation being submitted.
func (s *Submission) Op() Op { return s.op }

// Run executes the operation and releases the busy flag on every path.
func (s *Submission) Run(ctx context.Context) (Confirmation, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return Confirmation{}, errs.WithMessage(errs.ErrBusy, s.op.String(), "submission already ran")
	}
	defer s.c.busy.Store(false)
	return s.c.execute(ctx, s.op)
}

// Submit is Begin followed by Run.
func (c *Controller) Submit(ctx context.Context, op Op) (Confirmation, error) {
	sub, err := c.Begin(op)
	if err != nil {
		return Confirmation{}, err
	}
	return sub.Run(ctx)
}

// StartSale opens the public sale. Owner only.
func (c *Controller) StartSale(ctx context.Context) (Confirmation, error) {
	return c.Submit(ctx, OpStartSale)
}

// Mint buys one unit at the configured price.
func (c *Controller) Mint(ctx context.Context) (Confirmation, error) {
	return c.Submit(ctx, OpMint)
}

// Withdraw moves the proceeds to the owner. Owner only.
func (c *Controller) Withdraw(ctx context.Context) (Confirmation, error) {
	return c.Submit(ctx, OpWithdraw)
}

func (c *Controller) execute(ctx context.Context, op Op) (Confirmation, error) {
	sess, ok := c.conn.Session()
	if !ok {
		return Confirmation{}, errs.Wrap(errs.ErrNotConnected, op.String(), nil)
	}

	snap, err := c.guardSnapshot(ctx, sess.Address)
	if err != nil {
		return Confirmation{}, err
	}
	if err := c.guard(op, sess.Address, snap); err != nil {
		c.logger.Info("refused", "op", op, "reason", errs.KindOf(err))
		return Confirmation{}, err
	}

	signing, err := c.conn.Signing(ctx)
	if err != nil {
		return Confirmation{}, err
	}
	w := c.binder.Writer(signing)

	var tx *types.Transaction
	switch op {
	case OpStartSale:
		tx, err = w.StartPublicMint(ctx)
	case OpMint:
		tx, err = w.Mint(ctx, new(big.Int).Set(c.cfg.Price))
	case OpWithdraw:
		tx, err = w.Withdraw(ctx)
	default:
		return Confirmation{}, fmt.Errorf("unknown operation %v", op)
	}
	if err != nil {
		return Confirmation{}, classifySubmit(op, err)
	}
	c.logger.Info("submitted", "op", op, "tx", tx.Hash().Hex())

	receipt, err := w.WaitMined(ctx, tx)
	if err != nil {
		return Confirmation{}, errs.Wrap(errs.ErrRPCFailure, op.String(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		c.logger.Error("reverted", "op", op, "tx", tx.Hash().Hex())
		return Confirmation{}, errs.Wrap(errs.ErrTransactionReverted, op.String(),
			fmt.Errorf("tx %s in block %v", tx.Hash().Hex(), receipt.BlockNumber))
	}

	conf := Confirmation{Op: op, TxHash: tx.Hash(), Block: receipt.BlockNumber}
	c.logger.Info("confirmed", "op", op, "tx", tx.Hash().Hex(), "block", receipt.BlockNumber)

	fresh, err := c.Refresh(ctx)
	if err != nil {
		c.logger.Warn("post-confirmation sync failed", "op", op, "err", err)
		return conf, nil
	}
	conf.Snapshot = fresh
	conf.Synced = true
	return conf, nil
}

// guardSnapshot returns the latest snapshot for caller, polling once if
// none has been read for this caller yet.
func (c *Controller) guardSnapshot(ctx context.Context, caller common.Address) (Snapshot, error) {
	if snap, ok := c.Snapshot(); ok && snap.Caller == caller {
		return snap, nil
	}
	return c.Refresh(ctx)
}

func (c *Controller) guard(op Op, caller common.Address, snap Snapshot) error {
	switch op {
	case OpStartSale, OpWithdraw:
		if !snap.IsOwner(caller) {
			return errs.Wrap(errs.ErrUnauthorized, op.String(), nil)
		}
	case OpMint:
		if snap.SoldOut() {
			return errs.Wrap(errs.ErrSoldOut, op.String(), nil)
		}
		if snap.MintedByCaller {
			return errs.Wrap(errs.ErrAlreadyMinted, op.String(), nil)
		}
		if !snap.SaleStarted() {
			return errs.Wrap(errs.ErrSaleNotStarted, op.String(), nil)
		}
	}
	return nil
}

func classifySubmit(op Op, err error) error {
	if errs.KindOf(err) != "" {
		return err
	}
	if wallet.IsRejection(err) {
		return errs.Wrap(errs.ErrUserRejected, op.String(), err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "execution reverted") {
		return errs.Wrap(errs.ErrTransactionReverted, op.String(), err)
	}
	return errs.Wrap(errs.ErrRPCFailure, op.String(), err)
}
