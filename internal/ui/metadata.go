package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dropzone/internal/media"
)

const (
	fieldTitle = iota
	fieldArtist
	fieldAlbum
	fieldDate
	metadataFieldCount
)

var metadataLabels = [metadataFieldCount]string{"Title", "Artist", "Album", "Date"}

// MetadataModel is the import confirmation dialog: four editable fields
// prefilled from the lookup, enter imports, esc cancels.
type MetadataModel struct {
	source    string
	inputs    [metadataFieldCount]textinput.Model
	focus     int
	confirmed bool
	done      bool
}

// NewMetadataModel builds the dialog prefilled with the looked-up metadata.
func NewMetadataModel(source string, initial media.Metadata) MetadataModel {
	m := MetadataModel{source: source}
	values := [metadataFieldCount]string{initial.Title, initial.Artist, initial.Album, initial.Date}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[fieldTitle].Focus()
	return m
}

func (m MetadataModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m MetadataModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.confirmed = false
			return m, tea.Quit
		case "enter":
			m.done = true
			m.confirmed = true
			return m, tea.Quit
		case "tab", "down":
			return m.setFocus((m.focus + 1) % metadataFieldCount)
		case "shift+tab", "up":
			return m.setFocus((m.focus + metadataFieldCount - 1) % metadataFieldCount)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m MetadataModel) setFocus(focus int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = focus
	return m, m.inputs[m.focus].Focus()
}

func (m MetadataModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Import into Music"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.source))
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		label := labelStyle
		if i == m.focus {
			label = focusedLabelStyle
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label.Render(fmt.Sprintf("%-7s", metadataLabels[i]+":")), input.View()))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter import • esc cancel • tab next field"))
	return boxStyle.Render(b.String())
}

// Result returns the edited metadata and whether the import was confirmed.
// Valid once the program has finished.
func (m MetadataModel) Result() (media.Metadata, bool) {
	return media.Metadata{
		Title:  strings.TrimSpace(m.inputs[fieldTitle].Value()),
		Artist: strings.TrimSpace(m.inputs[fieldArtist].Value()),
		Album:  strings.TrimSpace(m.inputs[fieldAlbum].Value()),
		Date:   strings.TrimSpace(m.inputs[fieldDate].Value()),
	}, m.confirmed
}

// RunMetadataDialog runs the dialog and returns the confirmed metadata.
func RunMetadataDialog(source string, initial media.Metadata) (media.Metadata, bool, error) {
	program := tea.NewProgram(NewMetadataModel(source, initial))
	final, err := program.Run()
	if err != nil {
		return media.Metadata{}, false, fmt.Errorf("run metadata dialog: %w", err)
	}
	model, ok := final.(MetadataModel)
	if !ok {
		return media.Metadata{}, false, fmt.Errorf("unexpected dialog model %T", final)
	}
	meta, confirmed := model.Result()
	return meta, confirmed, nil
}
