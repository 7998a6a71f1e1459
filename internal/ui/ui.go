package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/reveille/internal/services"
)

var _ list.Item = deviceItem{}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954"))
)

// deviceItem wraps [services.Device] to implement [list.Item].
type deviceItem struct {
	device services.Device
}

func (i deviceItem) FilterValue() string { return i.device.Name }
func (i deviceItem) Title() string {
	if i.device.IsActive {
		return activeStyle.Render(i.device.Name + " (active)")
	}
	return i.device.Name
}
func (i deviceItem) Description() string {
	return fmt.Sprintf("%s • ID: %s", i.device.Type, i.device.ID)
}

// keyMap defines the key bindings for the device picker.
type keyMap struct {
	enter key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the bubbletea model for the device picker.
type Model struct {
	list     list.Model
	keys     keyMap
	choice   *services.Device
	quitting bool
}

// NewModel creates a picker over the fetched device list.
func NewModel(devices []services.Device) Model {
	items := make([]list.Item, 0, len(devices))
	for _, d := range devices {
		items = append(items, deviceItem{device: d})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a playback device"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return Model{list: l, keys: newKeyMap()}
}

// Choice returns the selected device, or nil when the picker was
// dismissed without a selection.
func (m Model) Choice() *services.Device {
	return m.choice
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(deviceItem); ok {
				d := item.device
				m.choice = &d
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting || m.choice != nil {
		return ""
	}
	return m.list.View()
}
