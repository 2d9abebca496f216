package publisher

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/folio/internal/domain"
)

// columnBudget caps the rendered length of each column per venue; rows beyond
// the budget are cut from the bottom (they are the smallest positions anyway).
const columnBudget = 1024

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	venueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(0, 1).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			MarginRight(2)

	cellStyle = lipgloss.NewStyle().
			MarginRight(2)

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	newStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// TerminalPublisher writes a per-venue digest of the user's portfolio with
// trend markers to a terminal.
type TerminalPublisher struct {
	out io.Writer
}

func NewTerminalPublisher() *TerminalPublisher {
	return &TerminalPublisher{out: os.Stdout}
}

// WithWriter redirects output, used by tests.
func (p *TerminalPublisher) WithWriter(w io.Writer) *TerminalPublisher {
	p.out = w
	return p
}

func (p *TerminalPublisher) Publish(_ context.Context, snapshot domain.DiffedSnapshot) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s — %s\n\n", snapshot.UserID, snapshot.TakenAt.Format("2006-01-02 15:04 MST"))

	for _, group := range snapshot.Venues {
		if len(group.Holdings) == 0 {
			continue
		}

		assets, quantities, worths := Columns(group.Holdings)

		b.WriteString(venueStyle.Render(group.Venue.String()))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(
			lipgloss.Top,
			renderColumn("Asset", assets),
			renderColumn("Quantity", quantities),
			renderColumn("Worth", worths),
		))
		b.WriteString("\n\n")
	}

	_, err := io.WriteString(p.out, b.String())
	return err
}

// Columns formats the three display columns for one venue, applying the
// per-column length budget.
func Columns(rows []domain.DiffedHolding) (assets, quantities, worths []string) {
	rows = truncateRows(rows)
	for _, row := range rows {
		assets = append(assets, row.Symbol)
		quantities = append(quantities, row.Quantity.String())
		worths = append(worths, fmt.Sprintf("$%s %s", row.ValueUSD.StringFixed(2), marker(row.Trend)))
	}
	return assets, quantities, worths
}

// truncateRows cuts rows from the bottom until every column fits its budget.
func truncateRows(rows []domain.DiffedHolding) []domain.DiffedHolding {
	for len(rows) > 0 {
		var assetLen, qtyLen, worthLen int
		for _, row := range rows {
			assetLen += len(row.Symbol) + 1
			qtyLen += len(row.Quantity.String()) + 1
			worthLen += len(row.ValueUSD.StringFixed(2)) + 4
		}
		if assetLen <= columnBudget && qtyLen <= columnBudget && worthLen <= columnBudget {
			break
		}
		rows = rows[:len(rows)-1]
	}
	return rows
}

func marker(trend domain.Trend) string {
	switch trend {
	case domain.TrendUp:
		return upStyle.Render("↑")
	case domain.TrendDown:
		return downStyle.Render("↓")
	case domain.TrendNew:
		return newStyle.Render("new")
	default:
		return "→"
	}
}

func renderColumn(title string, cells []string) string {
	lines := append([]string{headerStyle.Render(title)}, cells...)
	return cellStyle.Render(strings.Join(lines, "\n"))
}
