package main

import (
	"bytes"
	"math/big"
	"sync"

	"deplebs-mint-tui/config"
	"deplebs-mint-tui/deplebs"
	"deplebs-mint-tui/mint"
	"deplebs-mint-tui/rpc"
	"deplebs-mint-tui/styles"
	"deplebs-mint-tui/wallet"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
)

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	cfg        config.Config
	configPath string
	saleCfg    mint.Config

	// chain connection
	rpcURL        string
	ethClient     *rpc.Client
	chainID       string
	rpcConnected  bool
	rpcConnecting bool

	// wallet and sale
	binder     *deplebs.Binder
	provider   *wallet.KeystoreProvider
	ctrl       *mint.Controller
	ctrlDone   chan struct{} // closed when ctrl is replaced
	connecting bool
	pending    mint.Op

	// account details
	spin    spinner.Model
	loading bool
	details rpc.AccountDetails

	// connect form
	connectForm *huh.Form

	// confirm dialog (stands in for the wallet's approval prompt)
	showConfirm        bool
	confirmOp          mint.Op
	confirmYesSelected bool

	// error notification
	showError     bool
	errTitle      string
	errMessage    string
	errSuggestion string

	// transaction result panel
	showTxResultPanel bool
	txResult          mint.Confirmation
	txURL             string
	txMetadata        string
	txTokenID         *big.Int
	txTokenURI        string
	txCopiedMsg       string

	// clipboard feedback
	copiedMsg string

	// rpc endpoint picker
	showSettings   bool
	selectedRPCIdx int

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *syncBuffer
	logShown    int // buffer length last copied into the viewport
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model
}

// syncBuffer is the log sink shared by the UI and background goroutines
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	b.buf.Reset()
	b.mu.Unlock()
}

// -------------------- INIT --------------------

// newModel creates the model for cfg. The contract address must already be
// validated.
func newModel(cfg config.Config, configPath string) (model, error) {
	binder, err := deplebs.NewBinder(common.HexToAddress(cfg.ContractAddress))
	if err != nil {
		return model{}, err
	}

	activeRPC, _ := cfg.ActiveRPC()
	selected := 0
	for i, r := range cfg.RPCURLs {
		if r.URL == activeRPC.URL {
			selected = i
			break
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// Initialize log viewport
	vp := viewport.New(0, 10) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	buf := &syncBuffer{}

	saleCfg := mint.DefaultConfig()

	m := model{
		cfg:            cfg,
		configPath:     configPath,
		saleCfg:        saleCfg,
		rpcURL:         activeRPC.URL,
		binder:         binder,
		spin:           sp,
		selectedRPCIdx: selected,
		logEnabled:     cfg.Logger,
		logBuffer:      buf,
		logger:         newLogger(buf),
		logViewport:    vp,
		logSpinner:     logSpin,
	}
	return m, nil
}

// newLogger writes styled log lines into buf for the log panel
func newLogger(buf *syncBuffer) *log.Logger {
	l := log.NewWithOptions(buf, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           log.DebugLevel,
	})
	l.SetStyles(&log.Styles{
		Timestamp: lipgloss.NewStyle().Foreground(cMuted),
		Caller:    lipgloss.NewStyle().Faint(true),
		Prefix:    lipgloss.NewStyle().Bold(true).Foreground(cAccent2),
		Message:   lipgloss.NewStyle().Foreground(cText),
		Key:       lipgloss.NewStyle().Foreground(cAccent),
		Value:     lipgloss.NewStyle().Foreground(cText),
		Separator: lipgloss.NewStyle().Faint(true),
		Levels: map[log.Level]lipgloss.Style{
			log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
			log.InfoLevel:  lipgloss.NewStyle().Foreground(cAccent2).SetString("INFO"),
			log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
			log.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).SetString("ERROR"),
		},
	})
	return l
}

// Init implements tea.Model interface and returns initial commands
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	if m.rpcURL != "" {
		m.rpcConnecting = true
		cmds = append(cmds, connectRPC(m.rpcURL))
	}
	return tea.Batch(cmds...)
}

// state derives the UI state from the controller
func (m *model) state() mint.UIState {
	if m.ctrl == nil {
		return mint.StateDisconnected
	}
	return m.ctrl.State()
}

// session returns the connected wallet session, if any
func (m *model) session() (wallet.Session, bool) {
	if m.ctrl == nil {
		return wallet.Session{}, false
	}
	return m.ctrl.Session()
}

// snapshot returns the latest sale snapshot, if any
func (m *model) snapshot() (mint.Snapshot, bool) {
	if m.ctrl == nil {
		return mint.Snapshot{}, false
	}
	return m.ctrl.Snapshot()
}
