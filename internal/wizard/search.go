package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchScope selects which song fields a query matches.
type SearchScope int

const (
	SearchTitles SearchScope = iota
	SearchTitlesAndArtists
)

// SearchResult is a matching song.
type SearchResult struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// SearchFunc finds songs matching query.
type SearchFunc func(query string, scope SearchScope) ([]SearchResult, error)

// SearchModel is the bubbletea model for the song search picker.
type SearchModel struct {
	input     textinput.Model
	results   []SearchResult
	cursor    int
	scope     SearchScope
	search    SearchFunc
	selected  *SearchResult
	err       error
	debounce  time.Duration
	lastQuery string
	searched  bool
	width     int
	height    int
}

// Styles
var (
	searchTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	searchTabStyle = lipgloss.NewStyle().
			Padding(0, 2)

	searchActiveTabStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(lipgloss.Color("205")).
				Foreground(lipgloss.Color("0"))

	searchResultStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	searchSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	searchSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewSearchModel creates a search picker over a playlist.
func NewSearchModel(playlist string, search SearchFunc) SearchModel {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("Search %s...", playlist)
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50

	return SearchModel{
		input:    ti,
		search:   search,
		debounce: 150 * time.Millisecond,
		width:    80,
		height:   20,
	}
}

// Init runs an empty search so the whole playlist is listed at first.
func (m SearchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.doSearch(""))
}

// debounceMsg is sent after the debounce period.
type debounceMsg struct {
	query string
}

// searchResultsMsg contains search results.
type searchResultsMsg struct {
	query   string
	results []SearchResult
	err     error
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if len(m.results) > 0 && m.cursor < len(m.results) {
				m.selected = &m.results[m.cursor]
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case "tab", "shift+tab":
			m.scope = 1 - m.scope
			return m, m.doSearch(m.input.Value())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4

	case debounceMsg:
		if msg.query == m.input.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			return m, m.doSearch(msg.query)
		}
		return m, nil

	case searchResultsMsg:
		m.searched = true
		m.results = msg.results
		m.err = msg.err
		m.cursor = 0
		return m, nil
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	if query := m.input.Value(); query != m.lastQuery {
		cmds = append(cmds, tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return debounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m SearchModel) doSearch(query string) tea.Cmd {
	scope := m.scope
	return func() tea.Msg {
		results, err := m.search(query, scope)
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

// View renders the model.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(searchTitleStyle.Render("🔍 Find a song"))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	tabs := []string{"Titles", "Titles + Artists"}
	for i, tab := range tabs {
		if SearchScope(i) == m.scope {
			b.WriteString(searchActiveTabStyle.Render(tab))
		} else {
			b.WriteString(searchTabStyle.Render(tab))
		}
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: " + m.err.Error()))
	case m.searched && len(m.results) == 0:
		b.WriteString("No matching songs")
	default:
		maxResults := max(m.height-10, 5)
		for i, result := range m.results {
			if i >= maxResults {
				b.WriteString(searchSubtitleStyle.Render(fmt.Sprintf("  ...and %d more", len(m.results)-i)))
				break
			}

			line := result.Title
			if result.Artist != "" {
				line += " " + searchSubtitleStyle.Render(result.Artist)
			}

			if i == m.cursor {
				b.WriteString(searchSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(searchResultStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(searchSubtitleStyle.Render("↑/↓ navigate • tab match artists • enter select • esc quit"))

	return b.String()
}

// Selected returns the selected result, or nil if none.
func (m SearchModel) Selected() *SearchResult {
	return m.selected
}

// RunSongSearch runs the search picker and returns the selected song.
func RunSongSearch(playlist string, search SearchFunc) (*SearchResult, error) {
	model := NewSearchModel(playlist, search)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(SearchModel).Selected(), nil
}
