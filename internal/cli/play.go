package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/render/column/layout"
	"github.com/matzehuels/stackbuilder/pkg/render/column/sink"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// =============================================================================
// Key bindings
// =============================================================================

type playKeyMap struct {
	Top         key.Binding
	Bottom      key.Binding
	Label       key.Binding
	Space       key.Binding
	RemoveHead  key.Binding
	RemoveTail  key.Binding
	Undo        key.Binding
	Redo        key.Binding
	Reset       key.Binding
	ToggleShift key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func (k playKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Top, k.Label, k.Bottom, k.Space, k.RemoveTail, k.Undo, k.Help, k.Quit}
}

func (k playKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Top, k.Label, k.Bottom, k.Space},
		{k.RemoveHead, k.RemoveTail, k.Reset},
		{k.Undo, k.Redo, k.ToggleShift},
		{k.Help, k.Quit},
	}
}

var playKeys = playKeyMap{
	Top:         key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "top")),
	Bottom:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bottom")),
	Label:       key.NewBinding(key.WithKeys("l", "r"), key.WithHelp("l/r", "label")),
	Space:       key.NewBinding(key.WithKeys("s", "&"), key.WithHelp("s/&", "spacer")),
	RemoveHead:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove head")),
	RemoveTail:  key.NewBinding(key.WithKeys("backspace", "d"), key.WithHelp("⌫/d", "remove tail")),
	Undo:        key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
	Redo:        key.NewBinding(key.WithKeys("U", "ctrl+y"), key.WithHelp("U", "redo")),
	Reset:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	ToggleShift: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "offsets")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// =============================================================================
// Model
// =============================================================================

// playChanges is written by the store observer and drained by Update.
type playChanges struct {
	pending bool
	last    stack.Change
}

type playModel struct {
	store       *stack.Store
	changes     *playChanges
	keys        playKeyMap
	help        help.Model
	viewport    viewport.Model
	layout      layout.Options
	showOffsets bool
	ready       bool
	status      string
}

const (
	playHeaderHeight = 2
	playFooterHeight = 3
)

func newPlayModel(store *stack.Store, lopts layout.Options, showOffsets bool) playModel {
	changes := &playChanges{}
	store.Subscribe(func(c stack.Change) {
		changes.pending = true
		changes.last = c
	})
	return playModel{
		store:       store,
		changes:     changes,
		keys:        playKeys,
		help:        help.New(),
		viewport:    viewport.New(80, 20),
		layout:      lopts,
		showOffsets: showOffsets,
	}
}

func (m playModel) Init() tea.Cmd { return nil }

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-playHeaderHeight-playFooterHeight, 3)
		m.help.Width = msg.Width
		m.ready = true
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.ToggleShift):
			m.showOffsets = !m.showOffsets
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.store.Dispatch(stack.AddTop)
		case key.Matches(msg, m.keys.Bottom):
			m.store.Dispatch(stack.AddBottom)
		case key.Matches(msg, m.keys.Label):
			m.store.Dispatch(stack.AddLabel)
		case key.Matches(msg, m.keys.Space):
			m.store.Dispatch(stack.AddSpace)
		case key.Matches(msg, m.keys.RemoveHead):
			m.store.Dispatch(stack.RemoveHead)
		case key.Matches(msg, m.keys.RemoveTail):
			m.store.Dispatch(stack.RemoveTail)
		case key.Matches(msg, m.keys.Undo):
			m.store.Undo()
		case key.Matches(msg, m.keys.Redo):
			m.store.Redo()
		case key.Matches(msg, m.keys.Reset):
			m.store.Reset()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.drain()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// drain applies a pending change notification: redraw and follow the newest
// layer at the bottom.
func (m *playModel) drain() {
	if !m.changes.pending {
		m.status = "no change"
		if m.store.Full() {
			m.status = fmt.Sprintf("stack is full (%d layers)", m.store.MaxLayers())
		}
		return
	}
	c := m.changes.last
	m.changes.pending = false

	if c.Cause == stack.CauseDispatch {
		m.status = c.Action.String()
	} else {
		m.status = c.Cause.String()
	}
	m.refresh()
	m.viewport.GotoBottom()
}

func (m *playModel) refresh() {
	var opts []sink.TermOption
	opts = append(opts, sink.WithEmptyText("press t, l, b or s to add a layer"))
	if m.showOffsets {
		opts = append(opts, sink.WithTermOffsets())
	}
	m.viewport.SetContent(sink.RenderTerm(layout.Build(m.store.State(), m.layout), opts...))
}

func (m playModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("stackbuilder"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.summary()))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m playModel) summary() string {
	s := m.store.State()
	parts := []string{fmt.Sprintf("%d layers", s.Len())}
	if n := m.store.MaxLayers(); n > 0 {
		parts = append(parts, fmt.Sprintf("max %d", n))
	}
	if m.store.CanUndo() {
		parts = append(parts, "undo")
	}
	if m.store.CanRedo() {
		parts = append(parts, "redo")
	}
	return strings.Join(parts, " · ")
}

// =============================================================================
// Command
// =============================================================================

// playCommand creates the interactive builder.
func (c *CLI) playCommand() *cobra.Command {
	var maxLayers int

	cmd := &cobra.Command{
		Use:   "play [action...]",
		Short: "Build a stack interactively in the terminal",
		Long: `Build a stack one key press at a time. Optional actions seed the stack
before the UI starts. On exit the equivalent render command is printed.`,
		ValidArgsFunction: completeActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
				return errors.New(errors.ErrCodeUnsupported, "play needs an interactive terminal; use render instead")
			}

			cfg := c.Config
			if cmd.Flags().Changed("max-layers") {
				cfg.Stack.MaxLayers = maxLayers
			}
			seed, err := stack.ParseActions(args)
			if err != nil {
				return err
			}

			store := stack.NewStore(append(cfg.StoreOptions(),
				stack.WithIDGenerator(layer.SequentialIDs("layer")))...)
			store.DispatchAll(seed...)

			lopts := layout.Options{Width: cfg.Render.Width, Margin: cfg.Render.Margin}
			final, err := tea.NewProgram(newPlayModel(store, lopts, cfg.UI.ShowOffsets), tea.WithAltScreen()).Run()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "run terminal ui")
			}

			s := final.(playModel).store.State()
			if s.IsEmpty() {
				printInfo("Empty stack")
				return nil
			}
			printSuccess("Built %d layers", s.Len())
			printNextStep("Render it with", renderCommandLine(s))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxLayers, "max-layers", 0, "cap the number of layers (0 = unbounded)")
	return cmd
}

// renderCommandLine returns the render invocation that rebuilds s.
func renderCommandLine(s stack.Stack) string {
	tokens := []string{appName, "render"}
	for _, k := range s.Kinds() {
		tokens = append(tokens, k.String())
	}
	return strings.Join(tokens, " ")
}
