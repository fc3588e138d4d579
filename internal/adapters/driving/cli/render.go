package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

// Palette colours.
var (
	colourPrimary = lipgloss.Color("#7C3AED") // Purple
	colourMuted   = lipgloss.Color("#6C7086") // Medium gray
	colourSuccess = lipgloss.Color("#A6E3A1") // Green
	colourWarning = lipgloss.Color("#F9E2AF") // Yellow
	colourError   = lipgloss.Color("#F38BA8") // Red
	colourBorder  = lipgloss.Color("#45475A") // Border gray
)

// summaryStyles are the lipgloss styles of the run summary.
type summaryStyles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	bad     lipgloss.Style
	box     lipgloss.Style
}

// newSummaryStyles binds styles to w. The renderer drops colour when w is not
// a terminal, and the box border is only drawn on terminals.
func newSummaryStyles(w io.Writer) (summaryStyles, bool) {
	r := lipgloss.NewRenderer(w)
	width, tty := terminalWidth(w)

	s := summaryStyles{
		title:   r.NewStyle().Bold(true).Foreground(colourPrimary),
		label:   r.NewStyle().Width(10).Foreground(colourMuted),
		muted:   r.NewStyle().Foreground(colourMuted),
		good:    r.NewStyle().Foreground(colourSuccess),
		warning: r.NewStyle().Foreground(colourWarning),
		bad:     r.NewStyle().Bold(true).Foreground(colourError),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colourBorder).
			Padding(0, 1),
	}
	if tty && width > 0 {
		s.box = s.box.MaxWidth(width)
	}
	return s, tty
}

// terminalWidth reports whether w is a terminal and its width.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, true
	}
	return width, true
}

// renderSummary prints a run summary.
func renderSummary(w io.Writer, s *domain.RunSummary) {
	st, tty := newSummaryStyles(w)

	count := func(n int, style lipgloss.Style) string {
		if n == 0 {
			return st.muted.Render("0")
		}
		return style.Render(fmt.Sprint(n))
	}
	row := func(label string, parts ...string) string {
		return st.label.Render(label) + strings.Join(parts, "  ")
	}

	header := st.title.Render(fmt.Sprintf("Run %s (%s)", s.RunID, s.Stage))
	if !s.StartedAt.IsZero() {
		header += st.muted.Render(fmt.Sprintf("  %s", s.StartedAt.UTC().Format("2006-01-02 15:04:05Z")))
	}
	if s.Duration != "" {
		header += st.muted.Render(", " + s.Duration)
	}

	lines := []string{header}
	if s.Stage == domain.StageBuild {
		lines = append(lines, row("Blocks",
			"parsed "+count(s.BlocksParsed, st.good),
			"unparseable "+count(s.BlocksUnparseable, st.warning),
			"orphan "+count(s.OrphanBlocks, st.warning),
			"flagged "+count(s.FlaggedBlocks, st.warning)))
	}
	lines = append(lines, row("Products",
		"ingested "+count(s.ProductsIngested, st.good),
		"changed "+count(s.ProductsChanged, st.good)))

	if reasons := s.DropReasons(); len(reasons) > 0 {
		parts := make([]string, 0, len(reasons))
		for _, r := range reasons {
			parts = append(parts, string(r)+" "+count(s.Dropped[r], st.warning))
		}
		lines = append(lines, row("Dropped", parts...))
	}

	if s.ImagesResolved+s.ImagesUnresolved > 0 {
		lines = append(lines, row("Images",
			"resolved "+count(s.ImagesResolved, st.good),
			"unresolved "+count(s.ImagesUnresolved, st.warning)))
	}
	if s.UploadsOK+s.UploadsCached+s.UploadsFailed > 0 {
		lines = append(lines, row("Uploads",
			"ok "+count(s.UploadsOK, st.good),
			"cached "+count(s.UploadsCached, st.good),
			"failed "+count(s.UploadsFailed, st.bad)))
	}
	if s.Backup != "" {
		lines = append(lines, row("Backup", st.muted.Render(s.Backup)))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if tty {
		body = st.box.Render(body)
	}
	fmt.Fprintln(w, body)
}
