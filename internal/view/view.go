// Package view renders store state as text. The same strings back the CLI
// output and the TUI screen.
package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hikepredict/internal/store"
	"hikepredict/pkg/types"
)

// DeleteControl marks the per-row delete action.
const DeleteControl = "[x] delete"

// Minutes rounds half up, so 87.5 shows as 88 and 87.4 as 87.
func Minutes(m float64) int {
	return int(math.Floor(m + 0.5))
}

// TrainingRow is the display text of one training item.
func TrainingRow(it types.TrainingItem) string {
	return fmt.Sprintf("%s - %d minutes", it.Name, Minutes(it.CompletionTime))
}

// ListLine prefixes the row with the item id, for scripted use.
func ListLine(it types.TrainingItem) string {
	return fmt.Sprintf("[%s] %s", it.ID, TrainingRow(it))
}

// PredictionText is the display text of an estimate.
func PredictionText(minutes float64) string {
	return fmt.Sprintf("Estimated completion time: %d minutes", Minutes(minutes))
}

// Styles decorates the screen sections.
type Styles struct {
	Title      lipgloss.Style
	Section    lipgloss.Style
	Button     lipgloss.Style
	Disabled   lipgloss.Style
	Loading    lipgloss.Style
	Error      lipgloss.Style
	Prediction lipgloss.Style
	Row        lipgloss.Style
	Selected   lipgloss.Style
	Muted      lipgloss.Style
}

// DefaultStyles is the colored TUI theme.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E7D32")),
		Section:    lipgloss.NewStyle().Bold(true).MarginTop(1),
		Button:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1976D2")).Padding(0, 1),
		Disabled:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E")).Background(lipgloss.Color("#424242")).Padding(0, 1),
		Loading:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB300")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("#D32F2F")),
		Prediction: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1976D2")),
		Row:        lipgloss.NewStyle(),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E7D32")),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("#757575")),
	}
}

// PlainStyles renders text without any decoration.
func PlainStyles() Styles {
	p := lipgloss.NewStyle()
	return Styles{Title: p, Section: p, Button: p, Disabled: p, Loading: p, Error: p, Prediction: p, Row: p, Selected: p, Muted: p}
}

// Screen options.
type Screen struct {
	Styles  Styles
	Cursor  int    // selected training row, -1 for none
	Spinner string // loading indicator frame
}

// Render draws the whole route screen for st.
func (sc Screen) Render(st store.State) string {
	s := sc.Styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Hike Time Predictor"))
	b.WriteString("\n\n")

	train, predict := s.Button, s.Button
	if st.Busy() {
		train, predict = s.Disabled, s.Disabled
	}
	b.WriteString(train.Render("[t] Upload Training Data"))
	b.WriteString("  ")
	b.WriteString(predict.Render("[p] Predict Time"))
	b.WriteString("\n")

	if st.Loading {
		b.WriteString("\n")
		b.WriteString(s.Loading.Render(strings.TrimSpace(sc.Spinner + " Loading...")))
		b.WriteString("\n")
	}
	if st.ErrorMessage != "" {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(st.ErrorMessage))
		b.WriteString("\n")
	}
	if st.Prediction != nil {
		b.WriteString("\n")
		b.WriteString(s.Prediction.Render(PredictionText(*st.Prediction)))
		b.WriteString("\n")
	}

	b.WriteString(s.Section.Render("Training Data"))
	b.WriteString("\n")
	if len(st.TrainingItems) == 0 {
		b.WriteString(s.Muted.Render("No training data yet"))
		b.WriteString("\n")
	}
	for i, it := range st.TrainingItems {
		prefix, style := "  ", s.Row
		if i == sc.Cursor {
			prefix, style = "> ", s.Selected
		}
		b.WriteString(style.Render(prefix + TrainingRow(it)))
		b.WriteString("  ")
		b.WriteString(s.Muted.Render(DeleteControl))
		b.WriteString("\n")
	}
	return b.String()
}
