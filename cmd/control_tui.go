// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/jarolift/internal/config"
	"github.com/Thermoquad/jarolift/internal/params"
	"github.com/Thermoquad/jarolift/internal/sequencer"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const maxLogEntries = 100

// Focus states
const (
	focusCoverList = iota
	focusCounterInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// burstFunc runs one command on a cover. counter 0 uses the stored counter.
type burstFunc func(cv config.Cover, command sequencer.Command, button keeloq.Button, counter uint32) error

// coverItem is a configured cover shown in the list
type coverItem struct {
	cover config.Cover
}

// Implement list.Item interface
func (c coverItem) Title() string { return c.cover.Name }
func (c coverItem) Description() string {
	desc := fmt.Sprintf("serial %s group %s", orDefault(c.cover.Serial, "0x106aa01"), orDefault(c.cover.Group, "0x0001"))
	if c.cover.Reverse {
		desc += " (reversed)"
	}
	return desc
}
func (c coverItem) FilterValue() string { return c.cover.Name }

type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	burst    burstFunc
	connInfo string

	coverList    list.Model
	counterInput textinput.Model
	focusedField int

	busy     bool
	log      []logEntry
	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

// transmitMsg reports one packet sent by a running burst
type transmitMsg sequencer.Event

// burstDoneMsg reports the end of a burst
type burstDoneMsg struct {
	cover   string
	command string
	err     error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(covers []config.Cover, connInfo string, burst burstFunc) controlModel {
	ti := textinput.New()
	ti.Placeholder = "0x0000"
	ti.CharLimit = 10
	ti.Width = 12

	items := make([]list.Item, len(covers))
	for i, cv := range covers {
		items[i] = coverItem{cover: cv}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	coverList := list.New(items, delegate, 40, 12)
	coverList.Title = "Covers"
	coverList.SetShowStatusBar(false)
	coverList.SetShowHelp(false)
	coverList.SetFilteringEnabled(false)

	return controlModel{
		burst:        burst,
		connInfo:     connInfo,
		coverList:    coverList,
		counterInput: ti,
		focusedField: focusCoverList,
		width:        80,
		height:       24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return nil
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.coverList.SetSize(40, max(msg.Height-16, 6))

	case transmitMsg:
		m.addLogEntry(fmt.Sprintf("Sent %s serial 0x%07X group 0x%04X counter %d",
			msg.Button, msg.Serial, msg.Group, msg.Counter), false)

	case burstDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("%s %s failed: %v", msg.command, msg.cover, msg.err), true)
		} else {
			m.addLogEntry(fmt.Sprintf("%s %s done", msg.command, msg.cover), false)
		}
	}

	return m, nil
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.focusedField == focusCoverList {
			m.focusedField = focusCounterInput
			m.counterInput.Focus()
		} else {
			m.focusedField = focusCoverList
			m.counterInput.Blur()
		}
		return m, nil
	}

	if m.focusedField == focusCounterInput {
		if msg.String() == "enter" || msg.String() == "esc" {
			m.focusedField = focusCoverList
			m.counterInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.counterInput, cmd = m.counterInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "o":
		return m.startBurst(sequencer.CommandSend, "open", (*config.Cover).Open)
	case "c":
		return m.startBurst(sequencer.CommandSend, "close", (*config.Cover).Close)
	case "s":
		return m.startBurst(sequencer.CommandSend, "stop", (*config.Cover).Stop)
	case "L":
		return m.startBurst(sequencer.CommandLearn, "learn", nil)
	case "X":
		return m.startBurst(sequencer.CommandClear, "clear", nil)
	}

	var cmd tea.Cmd
	m.coverList, cmd = m.coverList.Update(msg)
	return m, cmd
}

// startBurst runs a command on the selected cover in the background
func (m controlModel) startBurst(command sequencer.Command, name string, action coverAction) (tea.Model, tea.Cmd) {
	if m.busy {
		m.addLogEntry("Busy: wait for the current burst to finish", true)
		return m, nil
	}

	item, ok := m.coverList.SelectedItem().(coverItem)
	if !ok {
		return m, nil
	}

	counter, err := params.Counter(m.counterInput.Value())
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	cv := item.cover
	button := keeloq.ButtonLearn
	if action != nil {
		button = action(&cv)
	}

	m.busy = true
	m.addLogEntry(fmt.Sprintf("%s %s...", name, cv.Name), false)

	burst := m.burst
	return m, func() tea.Msg {
		err := burst(cv, command, button, counter)
		return burstDoneMsg{cover: cv.Name, command: name, err: err}
	}
}

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.log = append(m.log, logEntry{timestamp: time.Now(), message: message, isError: isError})
	if len(m.log) > maxLogEntries {
		m.log = m.log[len(m.log)-maxLogEntries:]
	}
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("JAROLIFT CONTROL"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit Tab=counter", m.connInfo)))
	s.WriteString("\n\n")

	// Cover list | control panel
	listStyle := boxStyle
	if m.focusedField == focusCoverList {
		listStyle = focusedBoxStyle
	}
	coverPanel := listStyle.Render(m.coverList.View())

	panelStyle := boxStyle
	if m.focusedField == focusCounterInput {
		panelStyle = focusedBoxStyle
	}
	controlPanel := panelStyle.Width(max(m.width-48, 30)).Render(m.renderControlPanel(labelStyle, headerStyle, warningStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, coverPanel, " ", controlPanel))
	s.WriteString("\n\n")

	s.WriteString(m.renderEventLog(labelStyle, warningStyle, headerStyle, boxStyle))
	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m controlModel) renderControlPanel(labelStyle, headerStyle, warningStyle lipgloss.Style) string {
	var s strings.Builder

	item, ok := m.coverList.SelectedItem().(coverItem)
	if !ok {
		s.WriteString(headerStyle.Render("No cover selected"))
		return s.String()
	}

	s.WriteString(labelStyle.Render(item.cover.Name))
	s.WriteString("\n\n")
	s.WriteString("[o] open   [c] close   [s] stop\n")
	s.WriteString("[L] learn  [X] clear\n\n")
	s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Counter:"), m.counterInput.View()))

	if m.busy {
		s.WriteString("\n")
		s.WriteString(warningStyle.Render("Transmitting..."))
	}
	return s.String()
}

func (m controlModel) renderEventLog(labelStyle, warningStyle, headerStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	logHeight := 8
	startIdx := len(m.log) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.log) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for _, entry := range m.log[startIdx:] {
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyle
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(max(m.width-4, 40)).Render(s.String())
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
