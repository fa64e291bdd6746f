package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/hostlex"
	"github.com/liautaud/boldr/internal/hostparse"
	"github.com/liautaud/boldr/internal/pretty"
	"github.com/liautaud/boldr/internal/source"
	"github.com/liautaud/boldr/internal/translate"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively translate host expressions to QIR",
	Long:  `repl reads one host expression at a time (e.g. "lambda x: x + 1"), compiles and translates it, and shows the resulting QIR tree, or the error it produced, as you go.`,
	RunE:  runRepl,
}

// replEntry is one line of history: the expression typed, and either its
// rendered output or the error it produced.
type replEntry struct {
	input  string
	output string
	isErr  bool
}

type replModel struct {
	input   string
	history []replEntry
	spin    spinner.Model
	width   int
}

func newReplModel() replModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return replModel{spin: sp, width: 80}
}

func (m replModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if strings.TrimSpace(m.input) == "" {
				return m, nil
			}
			m.history = append(m.history, m.evaluate(m.input))
			m.input = ""
			return m, nil
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
			return m, nil
		case tea.KeySpace:
			m.input += " "
			return m, nil
		case tea.KeyRunes:
			m.input += string(msg.Runes)
			return m, nil
		}
	}
	return m, nil
}

func (m replModel) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s qirc repl - Ctrl-C to exit", m.spin.View())))
	b.WriteString("\n\n")

	start := 0
	if len(m.history) > 8 {
		start = len(m.history) - 8
	}
	for _, e := range m.history[start:] {
		b.WriteString(promptStyle.Render("> ") + e.input)
		b.WriteString("\n")
		if e.isErr {
			b.WriteString(errStyle.Render(e.output))
		} else {
			b.WriteString(e.output)
		}
		b.WriteString("\n")
	}

	b.WriteString(promptStyle.Render("> ") + m.input)
	return b.String()
}

// evaluate compiles one line of host source as a bare lambda body (or a
// full `lambda ...: body`/`def ...` form) and translates it, rendering the
// resulting QIR tree or the failure that stopped it.
func (m replModel) evaluate(src string) replEntry {
	if !strings.Contains(src, "lambda") && !strings.HasPrefix(strings.TrimSpace(src), "def") {
		src = "lambda: " + src
	}
	prog, err := compileSource(src)
	if err != nil {
		return replEntry{input: src, output: err.Error(), isErr: true}
	}
	expr, err := translate.Translate(prog, nil, nil)
	if err != nil {
		return replEntry{input: src, output: "translate: " + err.Error(), isErr: true}
	}
	return replEntry{input: src, output: pretty.Tree(expr)}
}

func compileSource(src string) (*bytecode.Program, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("<repl>", []byte(src))
	bag := diag.NewBag(50)
	reporter := diag.BagReporter{Bag: bag}

	toks := hostlex.New(fs.Get(id), reporter).Tokenize()
	if bag.HasErrors() {
		return nil, fmt.Errorf("lex: %s", firstError(bag))
	}
	fn, err := hostparse.Parse(toks, reporter)
	if err != nil {
		return nil, err
	}
	if bag.HasErrors() {
		return nil, fmt.Errorf("parse: %s", firstError(bag))
	}
	prog, err := bytecode.Compile(fn, reporter)
	if err != nil {
		if bag.HasErrors() {
			return nil, fmt.Errorf("compile: %s", firstError(bag))
		}
		return nil, err
	}
	return prog, nil
}

func firstError(bag *diag.Bag) string {
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			return d.Message
		}
	}
	return "unknown error"
}

func runRepl(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(newReplModel())
	_, err := p.Run()
	return err
}
