package mint

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync"
	"time"

	"deplebs-mint-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ownerAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	buyerAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	rinkeby   = big.NewInt(4)
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

type provider struct {
	mu      sync.Mutex
	account common.Address
	chain   *big.Int
	signErr error
	asked   chan struct{} // signalled when the account prompt opens
	answer  chan struct{} // when set, the prompt waits for it and ignores ctx
}

func (p *provider) RequestAccount(context.Context) (common.Address, error) {
	p.mu.Lock()
	asked, answer := p.asked, p.answer
	p.mu.Unlock()
	if answer != nil {
		asked <- struct{}{}
		<-answer
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.account, nil
}

func (p *provider) ChainID(context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.chain), nil
}

func (p *provider) setChain(id int64) {
	p.mu.Lock()
	p.chain = big.NewInt(id)
	p.mu.Unlock()
}

func (p *provider) Backend() wallet.Backend { return nil }

func (p *provider) Transactor(account common.Address, _ *big.Int) (*bind.TransactOpts, error) {
	if p.signErr != nil {
		return nil, p.signErr
	}
	return &bind.TransactOpts{From: account}, nil
}

// contract is an in-memory sale contract.
type contract struct {
	mu       sync.Mutex
	owner    common.Address
	started  bool
	ids      int64
	minted   map[common.Address]bool
	reads    []string
	readErr  error
	writes   []string
	values   []*big.Int
	revert   bool
	sendErr  error
	waitErr  error
	block    chan struct{} // when set, WaitMined blocks until closed
	inflight chan struct{} // signalled when a write is submitted
	nonce    uint64
}

func newContract() *contract {
	return &contract{owner: ownerAddr, minted: map[common.Address]bool{}}
}

func (c *contract) record(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = append(c.reads, name)
	return c.readErr
}

func (c *contract) Owner(context.Context) (common.Address, error) {
	if err := c.record("owner"); err != nil {
		return common.Address{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner, nil
}

func (c *contract) PublicMintStarted(context.Context) (bool, error) {
	if err := c.record("publicMintStarted"); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started, nil
}

func (c *contract) TokenIDs(context.Context) (*big.Int, error) {
	if err := c.record("tokenIds"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return big.NewInt(c.ids), nil
}

func (c *contract) Minted(_ context.Context, a common.Address) (bool, error) {
	if err := c.record("minted"); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minted[a], nil
}

func (c *contract) readLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.reads...)
}

func (c *contract) resetReads() {
	c.mu.Lock()
	c.reads = nil
	c.mu.Unlock()
}

func (c *contract) writeLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

func (c *contract) send(name string, value *big.Int) (*types.Transaction, error) {
	c.mu.Lock()
	if c.sendErr != nil {
		err := c.sendErr
		c.mu.Unlock()
		return nil, err
	}
	c.writes = append(c.writes, name)
	c.values = append(c.values, value)
	c.nonce++
	tx := types.NewTransaction(c.nonce, common.Address{}, value, 21000, big.NewInt(1), nil)
	inflight := c.inflight
	c.mu.Unlock()

	if inflight != nil {
		inflight <- struct{}{}
	}
	return tx, nil
}

type writer struct {
	*contract
	from common.Address
}

func (w writer) StartPublicMint(context.Context) (*types.Transaction, error) {
	return w.send("startPublicMint", nil)
}

func (w writer) Mint(_ context.Context, value *big.Int) (*types.Transaction, error) {
	return w.send("mint", value)
}

func (w writer) Withdraw(context.Context) (*types.Transaction, error) {
	return w.send("withdraw", nil)
}

// WaitMined applies the effect of the last write unless the contract is
// set to revert.
func (w writer) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	w.mu.Lock()
	block := w.block
	w.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.waitErr != nil {
		return nil, w.waitErr
	}
	r := &types.Receipt{TxHash: tx.Hash(), BlockNumber: big.NewInt(100 + int64(tx.Nonce()))}
	if w.revert {
		r.Status = types.ReceiptStatusFailed
		return r, nil
	}
	r.Status = types.ReceiptStatusSuccessful
	switch w.writes[len(w.writes)-1] {
	case "startPublicMint":
		w.started = true
	case "mint":
		w.ids++
		w.minted[w.from] = true
	}
	return r, nil
}

type binder struct{ c *contract }

func (b binder) Reader(wallet.Capability) ContractReader { return b.c }

func (b binder) Writer(s wallet.Signing) ContractWriter {
	return writer{contract: b.c, from: s.Session().Address}
}

type fixture struct {
	prov *provider
	con  *contract
	conn *wallet.Manager
	ctrl *Controller
}

func newFixture(account common.Address) *fixture {
	prov := &provider{account: account, chain: big.NewInt(4)}
	con := newContract()
	conn := wallet.NewManager(prov, rinkeby, quietLogger())
	cfg := DefaultConfig()
	cfg.PollInterval = time.Hour
	ctrl := NewController(cfg, conn, binder{c: con}, quietLogger())
	return &fixture{prov: prov, con: con, conn: conn, ctrl: ctrl}
}

var errNode = errors.New("connection refused")
