package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dropzone/internal/remote"
	"dropzone/internal/sshconfig"
)

// maxDisplayedSources caps the path list shown above the form.
const maxDisplayedSources = 5

// CopyParams wires the copy dialog to its environment.
type CopyParams struct {
	Hosts   []sshconfig.Host
	Sources []string
	// LocalHome abbreviates source paths in the summary.
	LocalHome string
	// NewCompleter builds a completer bound to the given host. Called once
	// per background task so the dialog never blocks on the network.
	NewCompleter func(host sshconfig.Host) *remote.Completer
}

// CopyResult is what the user confirmed in the dialog.
type CopyResult struct {
	Host              sshconfig.Host
	Destination       string
	Password          string
	CreateDestination bool
	Confirmed         bool
}

type copySection int

const (
	sectionHosts copySection = iota
	sectionPassword
	sectionDestination
)

// homeResolvedMsg delivers the remote home directory resolved in the
// background. Keyed by host name so a stale resolution for a previously
// selected host is dropped.
type homeResolvedMsg struct {
	host string
	home string
}

// completionsMsg delivers a background listing result tagged with the query
// generation it answers.
type completionsMsg struct {
	generation uint64
	candidates []string
}

// CopyModel is the copy-to-server dialog: host picker, optional password
// field, destination input with remote completions, create-destination
// toggle.
type CopyModel struct {
	params  CopyParams
	summary SourceSummary
	session *remote.Session

	section    copySection
	hostCursor int

	password textinput.Model
	dest     textinput.Model

	completions      []string
	completionCursor int

	createDest bool
	confirmed  bool
	done       bool
}

// NewCopyModel builds the dialog over the given hosts and source paths.
func NewCopyModel(params CopyParams) CopyModel {
	password := textinput.New()
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	dest := textinput.New()
	dest.Prompt = ""
	dest.CharLimit = 1024
	dest.Placeholder = "~/"

	return CopyModel{
		params:   params,
		summary:  SummarizeSources(params.Sources, params.LocalHome),
		session:  remote.NewSession(),
		password: password,
		dest:     dest,
	}
}

func (m CopyModel) Init() tea.Cmd {
	return textinput.Blink
}

// needsPassword reports whether the selected host has no usable identity
// file, so the transfer will fall back to password authentication.
func (m CopyModel) needsPassword() bool {
	return m.session.State() != remote.StateNoEndpoint && !m.session.Endpoint().HasIdentityFile()
}

func (m CopyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case homeResolvedMsg:
		if m.session.State() != remote.StateNoEndpoint && m.session.Endpoint().Name == msg.host {
			m.session.SetHome(msg.home)
		}
		return m, nil

	case completionsMsg:
		if !m.session.Current(msg.generation) {
			return m, nil
		}
		m.completions = msg.candidates
		m.completionCursor = 0
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.confirmed = false
			return m, tea.Quit
		case "ctrl+t":
			if m.section == sectionDestination {
				m.createDest = !m.createDest
				return m, nil
			}
		}
		switch m.section {
		case sectionHosts:
			return m.updateHosts(msg)
		case sectionPassword:
			return m.updatePassword(msg)
		case sectionDestination:
			return m.updateDestination(msg)
		}
	}

	return m, nil
}

func (m CopyModel) updateHosts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.hostCursor > 0 {
			m.hostCursor--
		}
	case "down", "j":
		if m.hostCursor < len(m.params.Hosts)-1 {
			m.hostCursor++
		}
	case "enter":
		if m.hostCursor < len(m.params.Hosts) {
			return m.selectHost(m.params.Hosts[m.hostCursor])
		}
	}
	return m, nil
}

// selectHost fixes the endpoint, seeds the destination with the home
// shorthand, and starts home resolution in the background.
func (m CopyModel) selectHost(host sshconfig.Host) (tea.Model, tea.Cmd) {
	m.session.SelectEndpoint(host)
	m.completions = nil
	m.completionCursor = 0
	m.dest.SetValue("~/")
	m.dest.CursorEnd()

	if m.needsPassword() {
		m.section = sectionPassword
		m.dest.Blur()
		return m, tea.Batch(m.password.Focus(), m.resolveHomeCmd(host))
	}
	m.section = sectionDestination
	m.password.Blur()
	return m, tea.Batch(m.dest.Focus(), m.resolveHomeCmd(host))
}

func (m CopyModel) updatePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "tab":
		m.section = sectionDestination
		m.password.Blur()
		return m, m.dest.Focus()
	case "shift+tab":
		m.section = sectionHosts
		m.password.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return m, cmd
}

func (m CopyModel) updateDestination(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if strings.TrimSpace(m.dest.Value()) == "" {
			return m, nil
		}
		m.done = true
		m.confirmed = true
		return m, tea.Quit
	case "shift+tab":
		m.dest.Blur()
		if m.needsPassword() {
			m.section = sectionPassword
			return m, m.password.Focus()
		}
		m.section = sectionHosts
		return m, nil
	case "up":
		if m.completionCursor > 0 {
			m.completionCursor--
		}
		return m, nil
	case "down":
		if m.completionCursor < len(m.completions)-1 {
			m.completionCursor++
		}
		return m, nil
	case "tab":
		if len(m.completions) == 0 {
			return m, nil
		}
		m.dest.SetValue(m.completions[m.completionCursor])
		m.dest.CursorEnd()
		return m, m.queryCompletions()
	}

	before := m.dest.Value()
	var cmd tea.Cmd
	m.dest, cmd = m.dest.Update(msg)
	if m.dest.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.queryCompletions())
}

// queryCompletions issues a background listing for the current destination
// text. The generation allocated here invalidates every older in-flight
// query.
func (m *CopyModel) queryCompletions() tea.Cmd {
	if !m.session.CanQuery() {
		return nil
	}
	m.session.NextQuery()
	snap := m.session.Snapshot()
	text := m.dest.Value()
	newCompleter := m.params.NewCompleter
	return func() tea.Msg {
		completer := newCompleter(snap.Endpoint)
		return completionsMsg{
			generation: snap.Generation,
			candidates: completer.Complete(context.Background(), snap.Home, text),
		}
	}
}

func (m CopyModel) resolveHomeCmd(host sshconfig.Host) tea.Cmd {
	newCompleter := m.params.NewCompleter
	return func() tea.Msg {
		completer := newCompleter(host)
		return homeResolvedMsg{host: host.Name, home: completer.ResolveHome(context.Background())}
	}
}

func (m CopyModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Copy to server"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.summary.Counts()))
	b.WriteString("\n")
	for i, path := range m.summary.Display {
		if i == maxDisplayedSources {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(m.summary.Display)-maxDisplayedSources)))
			b.WriteString("\n")
			break
		}
		b.WriteString(dimStyle.Render("  " + path))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.viewHosts())
	if m.needsPassword() {
		b.WriteString(m.viewLabeled("Password:", m.password.View(), sectionPassword))
	}
	b.WriteString(m.viewLabeled("Destination:", m.dest.View(), sectionDestination))

	if m.section == sectionDestination {
		for i, candidate := range m.completions {
			line := "  " + candidate
			if i == m.completionCursor {
				line = selectedStyle.Render("> " + candidate)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	toggle := "[ ]"
	if m.createDest {
		toggle = "[x]"
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s create destination directory (ctrl+t)", toggle)))
	b.WriteString("\n")

	if m.session.State() == remote.StateHomePending {
		b.WriteString(dimStyle.Render("resolving remote home…"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter confirm • tab complete • esc cancel"))
	return boxStyle.Render(b.String())
}

func (m CopyModel) viewHosts() string {
	var b strings.Builder
	label := labelStyle
	if m.section == sectionHosts {
		label = focusedLabelStyle
	}
	b.WriteString(label.Render("Host:"))
	b.WriteString("\n")
	selected := ""
	if m.session.State() != remote.StateNoEndpoint {
		selected = m.session.Endpoint().Name
	}
	for i, host := range m.params.Hosts {
		marker := "  "
		if m.section == sectionHosts && i == m.hostCursor {
			marker = "> "
		}
		line := marker + host.Name + " " + dimStyle.Render("("+host.Address()+")")
		if host.Name == selected {
			line = selectedStyle.Render(marker+host.Name) + " " + dimStyle.Render("("+host.Address()+")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m CopyModel) viewLabeled(label, field string, section copySection) string {
	style := labelStyle
	if m.section == section {
		style = focusedLabelStyle
	}
	return style.Render(label) + " " + field + "\n"
}

// Result returns what the user confirmed. Valid once the program finished.
func (m CopyModel) Result() CopyResult {
	result := CopyResult{
		Destination:       strings.TrimSpace(m.dest.Value()),
		Password:          m.password.Value(),
		CreateDestination: m.createDest,
		Confirmed:         m.confirmed,
	}
	if m.session.State() != remote.StateNoEndpoint {
		result.Host = m.session.Endpoint()
	}
	return result
}

// RunCopyDialog runs the dialog and returns the confirmed transfer request.
func RunCopyDialog(params CopyParams) (CopyResult, error) {
	program := tea.NewProgram(NewCopyModel(params))
	final, err := program.Run()
	if err != nil {
		return CopyResult{}, fmt.Errorf("run copy dialog: %w", err)
	}
	model, ok := final.(CopyModel)
	if !ok {
		return CopyResult{}, fmt.Errorf("unexpected dialog model %T", final)
	}
	return model.Result(), nil
}
