package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // primary text (e.g. wallet or period name)
	SubLabel string // secondary text shown dimmed (e.g. address or bonus)
	Value    string // value returned on selection (may differ from Label)
}

// pickerModel is the Bubble Tea model for the interactive list picker.
type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(m.items) > 0 {
				item := m.items[m.cursor]
				m.selected = &item
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	for i, item := range m.items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}

		line := prefix + StyleValue.Render(item.Label)
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}

		if i == m.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ q ] cancel") + "\n")
	return sb.String()
}

// PickItem runs an interactive list picker and returns the selected item's Value.
// Returns ("", nil) if the user cancels. Returns an error only on TUI failure.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to pick from")
	}

	m := pickerModel{title: title, items: items}
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}

// PeriodItems lists the lockup periods with the bonus each gives on amount.
func PeriodItems(amount decimal.Decimal) []PickerItem {
	items := make([]PickerItem, 0, 3)
	for _, p := range lockup.Periods() {
		sub := fmt.Sprintf("+%d%%", p.BonusPercent())
		if amount.IsPositive() {
			sub += fmt.Sprintf(" → %s MDT", FormatTokens(lockup.TokensWithBonus(amount, p)))
		}
		items = append(items, PickerItem{Label: p.String(), SubLabel: sub, Value: p.Hex()})
	}
	return items
}

// PickPeriod asks for a lockup period. ok is false when the user cancels.
func PickPeriod(amount decimal.Decimal) (p lockup.Period, ok bool, err error) {
	v, err := PickItem("Choose a lockup period", PeriodItems(amount))
	if err != nil || v == "" {
		return 0, false, err
	}
	p, err = lockup.ParsePeriod(v)
	if err != nil {
		return 0, false, err
	}
	return p, true, nil
}
