package mint

import (
	"context"
	"math"
	"time"

	"deplebs-mint-tui/errs"
	"deplebs-mint-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
)

// StateReader produces snapshots from read-only contract queries.
type StateReader struct {
	conn     *wallet.Manager
	binder   Binder
	capacity uint64
	logger   *log.Logger
	now      func() time.Time
}

// NewStateReader returns a reader for the sale with the given capacity.
func NewStateReader(conn *wallet.Manager, binder Binder, capacity uint64, logger *log.Logger) *StateReader {
	if logger == nil {
		logger = log.Default()
	}
	return &StateReader{
		conn:     conn,
		binder:   binder,
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// Poll reads owner, sale flag, minted count and, when a caller is known,
// whether the caller already minted, in that order.
func (r *StateReader) Poll(ctx context.Context) (Snapshot, error) {
	ro, err := r.conn.ReadOnly(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	c := r.binder.Reader(ro)
	caller := ro.Session().Address

	owner, err := c.Owner(ctx)
	if err != nil {
		return Snapshot{}, errs.Wrap(errs.ErrRPCFailure, "owner", err)
	}
	started, err := c.PublicMintStarted(ctx)
	if err != nil {
		return Snapshot{}, errs.Wrap(errs.ErrRPCFailure, "publicMintStarted", err)
	}
	ids, err := c.TokenIDs(ctx)
	if err != nil {
		return Snapshot{}, errs.Wrap(errs.ErrRPCFailure, "tokenIds", err)
	}

	var minted bool
	if caller != (common.Address{}) {
		minted, err = c.Minted(ctx, caller)
		if err != nil {
			return Snapshot{}, errs.Wrap(errs.ErrRPCFailure, "minted", err)
		}
	}

	var count uint64
	switch {
	case ids == nil:
	case ids.IsUint64():
		count = ids.Uint64()
	default:
		count = math.MaxUint64
	}

	s := Snapshot{
		Owner:          owner,
		RawSaleStarted: started,
		MintedCount:    count,
		MintedByCaller: minted,
		Caller:         caller,
		Capacity:       r.capacity,
		ReadAt:         r.now(),
	}
	r.logger.Debug("polled", "minted", s.MintedCount, "started", s.RawSaleStarted, "soldOut", s.SoldOut())
	return s, nil
}
