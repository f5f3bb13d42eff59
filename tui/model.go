package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/airchains-network/wallet-viewer/balance"
	"github.com/airchains-network/wallet-viewer/eth"
	"github.com/airchains-network/wallet-viewer/wallet"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const nodeInfoTimeout = 5 * time.Second

// Node is what the viewer needs from a blockchain connection
type Node interface {
	balance.Reader
	NodeInfo(ctx context.Context) (eth.NodeInfo, error)
}

// Model is the whole application state. Every Update returns the next state;
// nothing outside it is mutated.
type Model struct {
	node     Node
	accounts wallet.Set
	opts     balance.Options
	log      *logrus.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	info    eth.NodeInfo
	infoErr error
	infoSet bool

	refreshing bool
	generation int
	cancel     context.CancelFunc
	status     string

	width    int
	height   int
	quitting bool
}

type nodeInfoMsg struct {
	info eth.NodeInfo
	err  error
}

type refreshDoneMsg struct {
	generation int
	accounts   wallet.Set
	report     balance.Report
}

// New returns the initial viewer state for accounts
func New(node Node, accounts wallet.Set, opts balance.Options, log *logrus.Logger) Model {
	return Model{
		node:     node,
		accounts: accounts,
		opts:     opts,
		log:      log,
		keys:     keys,
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		status:   "Press a to refresh balances",
	}
}

// Run starts the full-screen program and blocks until the user quits
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return fetchNodeInfo(m.node)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Refresh):
			return m.startRefresh()
		}
		return m, nil

	case refreshDoneMsg:
		if msg.generation != m.generation {
			// superseded by a later refresh
			return m, nil
		}
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.refreshing = false
		m.accounts = msg.accounts
		m.status = statusLine(msg.report)
		return m, fetchNodeInfo(m.node)

	case nodeInfoMsg:
		m.info = msg.info
		m.infoErr = msg.err
		m.infoSet = true
		if msg.err != nil {
			m.log.Warnf("Failed to get node info: %v", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startRefresh launches a refresh on a copy of the accounts, cancelling any
// refresh still in flight.
func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
		m.log.Info("Cancelled in-flight refresh")
	}
	wasRefreshing := m.refreshing

	m.generation++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.refreshing = true
	m.status = "Refreshing balances..."

	cmd := refreshCmd(ctx, m.generation, m.node, m.accounts.Clone(), m.opts, m.log)
	if wasRefreshing {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func refreshCmd(ctx context.Context, generation int, reader balance.Reader, accounts wallet.Set, opts balance.Options, log *logrus.Logger) tea.Cmd {
	return func() tea.Msg {
		report := balance.Refresh(ctx, reader, accounts, opts, log)
		return refreshDoneMsg{generation: generation, accounts: accounts, report: report}
	}
}

func fetchNodeInfo(node Node) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), nodeInfoTimeout)
		defer cancel()
		info, err := node.NodeInfo(ctx)
		return nodeInfoMsg{info: info, err: err}
	}
}

func statusLine(r balance.Report) string {
	at := time.Now().Format("15:04:05")
	switch {
	case r.Cancelled:
		return fmt.Sprintf("Refresh cancelled at %s", at)
	case r.Failed() == 0:
		return fmt.Sprintf("Updated %d balances at %s", r.Updated, at)
	}
	// only the first failure fits on one line
	errs := multierr.Errors(r.Err())
	if len(errs) == 0 {
		return fmt.Sprintf("Updated %d/%d balances at %s", r.Updated, r.Total, at)
	}
	return fmt.Sprintf("Updated %d/%d balances at %s, %d failed: %v", r.Updated, r.Total, at, len(errs), errs[0])
}

// Accounts returns the accounts as currently displayed
func (m Model) Accounts() wallet.Set { return m.accounts }

// Refreshing reports whether a refresh is in flight
func (m Model) Refreshing() bool { return m.refreshing }

// Status returns the status line text
func (m Model) Status() string { return m.status }
