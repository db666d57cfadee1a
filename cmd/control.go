// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/GitNik1/vebus/pkg/vebus"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Live VE.Bus status and setpoint control TUI",
	Long: `Open the configured connection and run the protocol engine in the
background, showing live LED, charger/inverter, DC, and AC status while
letting the operator send a power setpoint or switch state.

VE.Bus is a fixed point-to-point link: there is exactly one device to
show, so there is no device list, just live status panels and a setpoint
input.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// connectionManager owns the transport and engine handle for the
// lifetime of the TUI session.
type connectionManager struct {
	v      *vebus.VEBus
	cancel context.CancelFunc
	prog   *tea.Program
}

func runControl(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := openTransport()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := vebus.New(transport, vebus.Config{})

	cm := &connectionManager{v: v, cancel: cancel}
	m := newControlModel(connInfo, cm)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	cm.prog = prog

	v.RegisterResponseCb(func(r vebus.ResponseData) {
		prog.Send(responseLogMsg{text: vebus.FormatResponseData(r)})
	})

	go func() {
		if err := v.Run(ctx); err != nil && ctx.Err() == nil {
			prog.Send(responseLogMsg{text: fmt.Sprintf("engine stopped: %v", err), isError: true})
		}
	}()
	go func() { _ = v.Maintain(ctx, maintainInterval) }()

	defer cancel()
	defer transport.Close()

	_, err = prog.Run()
	return err
}

type focusTarget int

const (
	focusPower focusTarget = iota
	focusSend
	focusSwitch
)

type logEntry struct {
	timestamp time.Time
	text      string
	isError   bool
}

type responseLogMsg struct {
	text    string
	isError bool
}

type statusTickMsg struct{}

var switchCycle = []vebus.SwitchState{
	vebus.SwitchChargerInverter,
	vebus.SwitchChargerOnly,
	vebus.SwitchInverterOnly,
	vebus.SwitchSleep,
}

type controlModel struct {
	connInfo string
	cm       *connectionManager

	powerInput textinput.Model
	focus      focusTarget
	switchIdx  int

	snapshot vebus.StatusSnapshot
	log      []logEntry

	width, height int
	quitting      bool
}

func newControlModel(connInfo string, cm *connectionManager) controlModel {
	ti := textinput.New()
	ti.Placeholder = "watts (negative charges the battery)"
	ti.Focus()
	ti.CharLimit = 8
	ti.Width = 30

	return controlModel{
		connInfo:   connInfo,
		cm:         cm,
		powerInput: ti,
		focus:      focusPower,
		width:      80,
		height:     24,
	}
}

func (m controlModel) Init() tea.Cmd {
	return statusTickCmd()
}

func statusTickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

func (m *controlModel) addLog(text string, isError bool) {
	m.log = append(m.log, logEntry{timestamp: time.Now(), text: text, isError: isError})
	if len(m.log) > 100 {
		m.log = m.log[len(m.log)-100:]
	}
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case statusTickMsg:
		m.snapshot = m.cm.v.Snapshot()
		return m, statusTickCmd()

	case responseLogMsg:
		m.addLog(msg.text, msg.isError)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.cm.cancel()
			return m, tea.Quit

		case "tab":
			m.focus = (m.focus + 1) % 3
			if m.focus == focusPower {
				m.powerInput.Focus()
			} else {
				m.powerInput.Blur()
			}
			return m, nil

		case "enter":
			switch m.focus {
			case focusPower, focusSend:
				m.submitPower()
			case focusSwitch:
				m.cycleSwitch()
			}
			return m, nil
		}
	}

	if m.focus == focusPower {
		var cmd tea.Cmd
		m.powerInput, cmd = m.powerInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *controlModel) submitPower() {
	watts, err := strconv.Atoi(strings.TrimSpace(m.powerInput.Value()))
	if err != nil {
		m.addLog(fmt.Sprintf("invalid power setpoint %q: %v", m.powerInput.Value(), err), true)
		return
	}
	id, reqErr := m.cm.v.SetPower(int16(watts))
	if reqErr != vebus.Success {
		m.addLog(fmt.Sprintf("SetPower(%d) rejected: %v", watts, reqErr), true)
		return
	}
	m.addLog(fmt.Sprintf("SetPower(%d) queued as id=0x%02X", watts, id), false)
}

func (m *controlModel) cycleSwitch() {
	state := switchCycle[m.switchIdx%len(switchCycle)]
	m.switchIdx++
	m.cm.v.SetSwitch(state)
	m.addLog(fmt.Sprintf("SetSwitch(%#02x) sent (fire-and-forget)", uint8(state)), false)
}

var (
	ctlTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Background(lipgloss.Color("235")).Padding(0, 1)
	ctlBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	ctlLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	ctlErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	ctlDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(ctlTitleStyle.Render("VE.BUS CONTROL"))
	s.WriteString("\n")
	s.WriteString(ctlDimStyle.Render(fmt.Sprintf("Connection: %s | tab to cycle focus, enter to act, q to quit", m.connInfo)))
	s.WriteString("\n\n")

	status := strings.Builder{}
	status.WriteString(vebus.FormatMasterMultiLed(m.snapshot.MasterMultiLed) + "\n")
	status.WriteString(vebus.FormatMultiPlusStatus(m.snapshot.MultiPlusStatus) + "\n")
	status.WriteString(vebus.FormatDcInfo(m.snapshot.DcInfo) + "\n")
	for _, ac := range m.snapshot.AcInfo {
		status.WriteString(vebus.FormatAcInfo(ac) + "\n")
	}
	s.WriteString(ctlBoxStyle.Render(strings.TrimRight(status.String(), "\n")))
	s.WriteString("\n\n")

	controls := strings.Builder{}
	powerLabel := "  Power setpoint:"
	if m.focus == focusPower {
		powerLabel = "> Power setpoint:"
	}
	controls.WriteString(fmt.Sprintf("%s %s\n", ctlLabelStyle.Render(powerLabel), m.powerInput.View()))

	sendLabel := "  [send]"
	if m.focus == focusSend {
		sendLabel = "> [send]"
	}
	controls.WriteString(ctlLabelStyle.Render(sendLabel) + "\n")

	switchLabel := "  [cycle switch state]"
	if m.focus == focusSwitch {
		switchLabel = "> [cycle switch state]"
	}
	controls.WriteString(ctlLabelStyle.Render(switchLabel))
	s.WriteString(ctlBoxStyle.Render(controls.String()))
	s.WriteString("\n\n")

	s.WriteString(ctlLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	logHeight := m.height - 20
	if logHeight < 5 {
		logHeight = 5
	}
	start := len(m.log) - logHeight
	if start < 0 {
		start = 0
	}
	logBody := strings.Builder{}
	if len(m.log) == 0 {
		logBody.WriteString(ctlDimStyle.Render("(no events yet)"))
	}
	for _, e := range m.log[start:] {
		ts := e.timestamp.Format("15:04:05.000")
		if e.isError {
			logBody.WriteString(fmt.Sprintf("%s %s\n", ctlDimStyle.Render(ts), ctlErrStyle.Render("✗ "+e.text)))
		} else {
			logBody.WriteString(fmt.Sprintf("%s %s\n", ctlDimStyle.Render(ts), e.text))
		}
	}
	s.WriteString(ctlBoxStyle.Render(strings.TrimRight(logBody.String(), "\n")))

	return s.String()
}
