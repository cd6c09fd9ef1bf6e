package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	DefaultNetwork string
	RPCAlgorithm   string
	WalletAddress  string
	Cancelled      bool
}

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepAlgorithm
	stepWallet
	stepDone
)

var algorithms = []string{"fastest", "round-robin", "failover"}

type wizardModel struct {
	step     wizardStep
	networks []string
	result   WizardResult
	cursor   int
	input    string
}

func newWizard(networks []string) wizardModel {
	return wizardModel{step: stepNetwork, networks: networks}
}

func (m wizardModel) choices() []string {
	switch m.step {
	case stepNetwork:
		return m.networks
	case stepAlgorithm:
		return algorithms
	}
	return nil
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	typing := m.step == stepWallet

	switch key.String() {
	case "ctrl+c", "esc":
		m.result.Cancelled = true
		return m, tea.Quit
	case "q":
		if !typing {
			m.result.Cancelled = true
			return m, tea.Quit
		}
		m.input += "q"
	case "up", "k":
		if !typing && m.cursor > 0 {
			m.cursor--
		} else if typing && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	case "down", "j":
		if !typing && m.cursor < len(m.choices())-1 {
			m.cursor++
		} else if typing && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	case "enter":
		m.apply()
		m.cursor = 0
		m.step++
	case "backspace":
		if typing && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if typing && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) apply() {
	switch m.step {
	case stepNetwork:
		if m.cursor < len(m.networks) {
			m.result.DefaultNetwork = m.networks[m.cursor]
		}
	case stepAlgorithm:
		m.result.RPCAlgorithm = algorithms[m.cursor]
	case stepWallet:
		// Pasted addresses sometimes carry brackets.
		m.result.WalletAddress = strings.Trim(strings.TrimSpace(m.input), "[]")
	}
}

func (m wizardModel) View() string {
	var s string
	switch m.step {
	case stepNetwork:
		s = renderMenu("Select default network:", m.choices(), m.cursor)
	case stepAlgorithm:
		s = renderMenu("Select RPC algorithm:", m.choices(), m.cursor)
	case stepWallet:
		s = StyleTitle.Render("Add a watch-only wallet (optional)") + "\n\n"
		s += StyleMeta.Render("Enter your address to check your lockups (Enter to skip):") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}
	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · q quit")
	return s
}

// RunWizard launches the interactive setup wizard over the given networks.
func RunWizard(networks []string) (*WizardResult, error) {
	final, err := tea.NewProgram(newWizard(networks)).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	result := final.(wizardModel).result
	return &result, nil
}
