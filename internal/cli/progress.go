package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/hound/pkg/resolve"
)

// recentResults is how many finished packages the live view keeps on screen.
const recentResults = 5

// Messages driving the check progress model. resultMsg arrives once per
// finished record (sent from the engine's OnRecord callback), doneMsg when
// the whole batch has returned.
type (
	resultMsg struct{ rec resolve.Record }
	doneMsg   struct{}
	tickMsg   time.Time
)

// checkModel is the bubbletea model rendering live batch progress: a
// spinner, running counts and the most recent results.
type checkModel struct {
	total   int
	done    int
	found   int
	missing int
	failed  int
	recent  []resolve.Record
	frame   int

	finished    bool
	interrupted bool
}

func newCheckModel(total int) checkModel {
	return checkModel{total: total}
}

func (m checkModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m checkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.interrupted = true
			return m, tea.Quit
		}
	case resultMsg:
		m.done++
		switch {
		case msg.rec.Found:
			m.found++
		case msg.rec.Err != "":
			m.failed++
		default:
			m.missing++
		}
		m.recent = append(m.recent, msg.rec)
		if len(m.recent) > recentResults {
			m.recent = m.recent[len(m.recent)-recentResults:]
		}
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tickCmd()
	}
	return m, nil
}

func (m checkModel) View() string {
	if m.finished {
		// The command prints the summary after the program exits.
		return ""
	}

	var b strings.Builder

	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	b.WriteString(fmt.Sprintf("%s %s %s\n",
		styleIconSpinner.Render(frame),
		StyleTitle.Render("Checking packages"),
		StyleDim.Render(fmt.Sprintf("%d/%d", m.done, m.total))))

	b.WriteString("  " +
		StyleSuccess.Render(fmt.Sprintf("%d found", m.found)) + StyleDim.Render(" · ") +
		StyleDim.Render(fmt.Sprintf("%d missing", m.missing)) + StyleDim.Render(" · ") +
		StyleWarning.Render(fmt.Sprintf("%d failed", m.failed)) + "\n\n")

	for _, rec := range m.recent {
		b.WriteString("  " + resultLine(rec) + "\n")
	}

	b.WriteString("\n" + StyleDim.Render("q quit") + "\n")
	return b.String()
}

// resultLine formats one finished record for the live view.
func resultLine(rec resolve.Record) string {
	name := rec.Name
	if name == "" {
		name = rec.RawPath
	}
	if rec.Version != "" {
		name += "@" + rec.Version
	}

	switch {
	case rec.Found:
		return styleIconSuccess.Render(iconSuccess) + " " + StyleValue.Render(name) +
			" " + StyleDim.Render(strings.Join(rec.Repositories, ", "))
	case rec.Err != "":
		return styleIconWarning.Render(iconWarning) + " " + StyleValue.Render(name) +
			" " + StyleDim.Render(truncate(rec.Err, 60))
	default:
		return styleIconError.Render(iconError) + " " + StyleDim.Render(name+"  not found")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
