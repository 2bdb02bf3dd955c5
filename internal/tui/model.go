package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"semgraph/internal/domain"
	"semgraph/internal/graph"
	"semgraph/internal/summarizer"
	"semgraph/internal/tokenize"
)

// summarySentences is how many sentences the detail pane extracts per document.
const summarySentences = 3

// Model is the Bubble Tea model for browsing a built graph.
type Model struct {
	result     *domain.Result
	docs       map[string]domain.Document
	summarizer domain.Summarizer
	input      textinput.Model
	viewport   viewport.Model
	visible    []int
	cursor     int
	status     string
	ready      bool
}

// New creates a browser over res. A nil summarizer falls back to the
// frequency summarizer.
func New(res *domain.Result, sum domain.Summarizer) Model {
	if sum == nil {
		sum = summarizer.NewFrequencySummarizer()
	}
	ti := textinput.New()
	ti.Prompt = "filter> "
	ti.Placeholder = "id, title or keyword"
	ti.Focus()
	ti.CharLimit = 0
	docs := make(map[string]domain.Document, len(res.Documents))
	for _, d := range res.Documents {
		docs[d.ID] = d
	}
	m := Model{
		result:     res,
		docs:       docs,
		summarizer: sum,
		input:      ti,
		viewport:   viewport.New(0, 0),
	}
	m.applyFilter()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, dh := detailBoxStyle.GetFrameSize()
		_, fh := filterBoxStyle.GetFrameSize()
		reserved := 2 + 1 + fh + 1 // header and node line, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-dh)
		m.viewport.SetContent(m.renderCurrentNode())
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyDown:
			if len(m.visible) > 0 {
				m.cursor = (m.cursor + 1) % len(m.visible)
				m.refresh()
			}
			return m, nil
		case tea.KeyUp:
			if len(m.visible) > 0 {
				m.cursor = (m.cursor - 1 + len(m.visible)) % len(m.visible)
				m.refresh()
			}
			return m, nil
		case tea.KeyPgDown, tea.KeyPgUp:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

// View renders the browser layout and the selected node.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("semgraph")
	position := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.positionLine())
	detail := detailBoxStyle.Render(m.viewport.View())
	input := filterBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + position + "\n" + detail + "\n" + input + "\n" + status
}

// Selected returns the node under the cursor.
func (m Model) Selected() (domain.Node, bool) {
	if len(m.visible) == 0 {
		return domain.Node{}, false
	}
	return m.result.Graph.Nodes[m.visible[m.cursor]], true
}

// applyFilter keeps the nodes whose id, title or keywords contain the filter
// text, case-insensitively, and resets the cursor.
func (m *Model) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.input.Value()))
	visible := make([]int, 0, len(m.result.Graph.Nodes))
	for i, n := range m.result.Graph.Nodes {
		if q == "" || m.matches(n, q) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	m.cursor = 0
	g := m.result.Graph
	m.status = fmt.Sprintf("%d/%d documents, %d clusters, %d links",
		len(m.visible), len(g.Nodes), m.result.Clusters, len(g.Links))
	m.refresh()
}

func (m *Model) matches(n domain.Node, q string) bool {
	if strings.Contains(strings.ToLower(n.ID), q) {
		return true
	}
	if strings.Contains(strings.ToLower(m.docs[n.ID].Title), q) {
		return true
	}
	for _, kw := range n.TopKeywords {
		if strings.Contains(kw, q) {
			return true
		}
	}
	return false
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderCurrentNode())
	m.viewport.GotoTop()
}

func (m Model) positionLine() string {
	n, ok := m.Selected()
	if !ok {
		return "no matching documents"
	}
	return fmt.Sprintf("%d/%d  %s", m.cursor+1, len(m.visible), n.ID)
}

func (m Model) renderCurrentNode() string {
	n, ok := m.Selected()
	if !ok {
		return "No documents match the filter."
	}
	doc := m.docs[n.ID]
	var b strings.Builder
	b.WriteString(titleStyle.Render(doc.Title))
	fmt.Fprintf(&b, "\n%s  cluster %d\n", n.ID, n.Group)
	fmt.Fprintf(&b, "words %d  freshness %.3f  radius %.2f\n", n.Metrics.Size, n.Metrics.DateScore, n.Metrics.Radius)
	if len(n.TopKeywords) > 0 {
		fmt.Fprintf(&b, "keywords: %s\n", strings.Join(n.TopKeywords, ", "))
	}

	b.WriteString("\n")
	neighbors := graph.Neighbors(m.result.Graph, n.ID)
	if len(neighbors) == 0 {
		b.WriteString("No related documents.\n")
	} else {
		b.WriteString("Related:\n")
		for _, nb := range neighbors {
			fmt.Fprintf(&b, "  %.3f  %s\n", nb.Value, nb.ID)
		}
	}

	if summary, err := m.summarizer.Summarize(doc.Body, summarySentences); err == nil && summary != "" {
		b.WriteString("\n")
		b.WriteString(highlightBestSentence(summary, n.TopKeywords))
	}
	return b.String()
}

var (
	detailBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	filterBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// highlightBestSentence emphasises the sentence sharing the most distinct
// words with keywords.
func highlightBestSentence(text string, keywords []string) string {
	sentences := tokenize.Sentences(text)
	if len(sentences) == 0 || len(keywords) == 0 {
		return text
	}
	want := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		want[kw] = struct{}{}
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := overlap(want, s); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestScore == 0 {
		return strings.Join(sentences, " ")
	}
	out := make([]string, len(sentences))
	copy(out, sentences)
	out[bestIdx] = highlightStyle.Render(out[bestIdx])
	return strings.Join(out, " ")
}

func overlap(want map[string]struct{}, sentence string) int {
	seen := make(map[string]struct{})
	for _, w := range tokenize.Words(sentence) {
		if _, ok := want[w]; !ok {
			continue
		}
		seen[w] = struct{}{}
	}
	return len(seen)
}
