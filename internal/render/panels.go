// Package render draws analysis results as terminal panels, one per category.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
)

const noSaved = "No saved data!"

type Renderer struct {
	heading lipgloss.Style
	title   lipgloss.Style
	panel   lipgloss.Style
	quote   lipgloss.Style
	chip    lipgloss.Style
	muted   lipgloss.Style
}

func New() *Renderer {
	return &Renderer{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginBottom(1),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		quote:   lipgloss.NewStyle().Italic(true),
		chip:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		muted:   lipgloss.NewStyle().Faint(true),
	}
}

// Panels renders every section of res. Sections the model left out are shown
// as empty panels.
func (r *Renderer) Panels(res domain.Result) string {
	cat := res.Categorization
	if cat == nil {
		cat = &domain.Categorization{}
	}
	pat := res.Patterns
	if pat == nil {
		pat = &domain.Patterns{}
	}
	freq := res.FrequencyAnalysis
	if freq == nil {
		freq = &domain.FrequencyAnalysis{}
	}

	blocks := []string{
		r.heading.Render("Chat Analysis Results"),
		r.box("Links/URLs", r.list(cat.Links, lipgloss.NewStyle())),
		r.box("Quotes/Insights", r.list(cat.Quotes, r.quote)),
		r.box("Personal Notes", r.list(cat.PersonalNotes, lipgloss.NewStyle())),
		r.box("Recommendations", r.list(cat.Recommendations, lipgloss.NewStyle())),
		r.box("Timestamps", r.list(cat.TimestampMetadata, lipgloss.NewStyle())),
		r.box("Themes", r.chips(res.Themes)),
		r.box("Pattern Recognition",
			"Frequent Contributors:\n"+r.chips(pat.FrequentContributors)+
				"\n\nTypical Flow:\n"+r.text(pat.TypicalFlow)),
		r.box("Frequency Analysis", strings.Join([]string{
			fmt.Sprintf("Total Links: %d", freq.TotalLinks),
			fmt.Sprintf("Total Quotes: %d", freq.TotalQuotes),
			fmt.Sprintf("Total Recommendations: %d", freq.TotalRecommendations),
			"Most Active: " + freq.MostActiveParticipant,
		}, "\n")),
		r.box("Insights", r.list(res.Insights, lipgloss.NewStyle())),
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}

// SavedList renders the saved chats menu in save order, numbered from 0.
func (r *Renderer) SavedList(entries []domain.SavedEntry) string {
	if len(entries) == 0 {
		return r.box("Saved Chats", noSaved) + "\n"
	}
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s", i, e.Name)
		if !e.SavedAt.IsZero() {
			line += r.muted.Render("  " + e.SavedAt.Format("2006-01-02 15:04"))
		}
		if e.ID != "" {
			line += r.muted.Render("  " + string(e.ID))
		}
		lines = append(lines, line)
	}
	return r.box("Saved Chats", strings.Join(lines, "\n")) + "\n"
}

func (r *Renderer) box(title, body string) string {
	return r.panel.Render(r.title.Render(title) + "\n" + body)
}

func (r *Renderer) list(items []string, style lipgloss.Style) string {
	if len(items) == 0 {
		return r.muted.Render("(none)")
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + style.Render(it)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) chips(items []string) string {
	if len(items) == 0 {
		return r.muted.Render("(none)")
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = r.chip.Render("[" + it + "]")
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) text(s string) string {
	if strings.TrimSpace(s) == "" {
		return r.muted.Render("(none)")
	}
	return s
}
