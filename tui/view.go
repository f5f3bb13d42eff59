package tui

import (
	"fmt"
	"strings"

	"github.com/airchains-network/wallet-viewer/wallet"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 100
	defaultHeight = 16
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	// status and help lines sit below the panels
	panelHeight := max(height-2, 3)

	// 20% | 3% | rest
	left := width * 20 / 100
	gap := width * 3 / 100
	right := width - left - gap

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		panel("Node", m.nodeView(), left, panelHeight),
		panel("", "", gap, panelHeight),
		panel("Addresses", m.accountsView(), right, panelHeight),
	)

	status := m.status
	if m.refreshing {
		status = m.spinner.View() + " " + status
	}
	return lipgloss.JoinVertical(lipgloss.Left, row, status, m.help.View(m.keys))
}

func panel(title, body string, width, height int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Width(max(width-2, 0)).
		Height(max(height-2, 0))
	if title == "" {
		return style.Render(body)
	}
	return style.Render(titleStyle.Render(title) + "\n" + body)
}

func (m Model) nodeView() string {
	switch {
	case !m.infoSet:
		return mutedStyle.Render("connecting...")
	case m.infoErr != nil:
		return errorStyle.Render("node unreachable")
	}
	lines := []string{
		fmt.Sprintf("chain %v", m.info.ChainID),
		fmt.Sprintf("block %d", m.info.BlockNumber),
		m.info.ClientVersion,
	}
	return strings.Join(lines, "\n")
}

func (m Model) accountsView() string {
	lines := make([]string, len(m.accounts))
	for i, acc := range m.accounts {
		lines[i] = accountLine(acc)
	}
	return strings.Join(lines, "\n")
}

func accountLine(acc wallet.Account) string {
	line := fmt.Sprintf("%d: %s AMOUNT: %d", acc.Index, acc.HexAddress(), acc.Balance)
	if acc.Err != nil {
		return errorStyle.Render(line + " (error)")
	}
	return line
}
