package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/distr1/archmigrate/internal/hints"
)

// hintTesterUser is the pseudo-author every line typed into the hint-tester
// is parsed as, granted every hint kind so nothing is silently dropped for
// lack of permission while exploring hypotheticals (§6 "hint tester").
const hintTesterUser = "hint-tester"

var hintTesterPerms = hints.Permissions{hintTesterUser: {hints.Kind(hints.HintsAll): true}}

func newHintTesterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint-tester",
		Short: "Interactively try hints against the current candidate set without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHintTester(cmd.Context())
		},
	}
}

func runHintTester(ctx context.Context) error {
	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	if eng.audit != nil {
		defer eng.audit.Close()
	}
	m := newHintTesterModel(eng)
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

var styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
var stylePass = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
var styleReject = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// hintTesterModel is a bubbletea model: a scrollback viewport of excuse
// summaries above a single-line text input that accepts one Hints-file
// command per Enter, the way chat.go pairs a viewport.Model with a
// textinput.Model for a scrolling conversation transcript.
type hintTesterModel struct {
	eng      *engine
	input    textinput.Model
	view     viewport.Model
	extraHints []hints.Hint
	width, height int
}

func newHintTesterModel(eng *engine) hintTesterModel {
	ti := textinput.New()
	ti.Placeholder = "block foo | unblock bar/amd64 | force baz | ..."
	ti.Focus()
	vp := viewport.New(80, 20)
	m := hintTesterModel{eng: eng, input: ti, view: vp}
	m.view.SetContent(m.render())
	return m
}

func (m hintTesterModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m hintTesterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 3
		m.view.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.SetValue("")
			if strings.TrimSpace(line) != "" {
				hs, warnings := hints.Parse(strings.NewReader(line), hintTesterUser, m.eng.ctx.Archs, hintTesterPerms)
				m.extraHints = append(m.extraHints, hs...)
				for _, w := range warnings {
					m.extraHints = append(m.extraHints, hints.Hint{Kind: hints.Remark, Remark: w.Error()})
				}
			}
			m.view.SetContent(m.render())
			m.view.GotoBottom()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m hintTesterModel) View() string {
	return fmt.Sprintf("%s\n%s\n%s\n> %s",
		styleTitle.Render("hint-tester (esc to quit)"), m.view.View(), strings.Repeat("-", m.width), m.input.View())
}

// render re-evaluates every candidate with the base engine hints plus
// whatever extraHints have been typed so far, and renders one line per
// excuse, colored by verdict.
func (m hintTesterModel) render() string {
	merged := append(append([]hints.Hint{}, m.eng.hints...), m.extraHints...)
	var sb strings.Builder
	names := make([]string, 0, len(m.eng.source.Sources))
	for name := range m.eng.source.Sources {
		names = append(names, name)
	}
	for _, name := range names {
		hs := hintsFor(merged, name)
		e := m.eng.builder.BuildFullSource(name, hs)
		if e == nil {
			continue
		}
		m.eng.builder.ScanDepends(e, name)
		m.eng.builder.Evaluate(e, m.eng.candidateFor(name, hs))
		style := stylePass
		if e.Verdict.IsRejected() {
			style = styleReject
		}
		sb.WriteString(style.Render(e.String()))
		sb.WriteByte('\n')
	}
	if len(m.extraHints) > 0 {
		sb.WriteString(styleTitle.Render("-- hints applied this session --\n"))
		for _, h := range m.extraHints {
			fmt.Fprintf(&sb, "%s %v\n", h.Kind, h.Items)
		}
	}
	return sb.String()
}
