package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/render/column/layout"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// runCLI executes the root command with isolated config and cache dirs.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("STACKBUILDER_CONFIG", "")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"svg", []string{"svg"}},
		{"svg, png,,pdf", []string{"svg", "png", "pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.in))
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		vizType   string
		format    string
		single    bool
		multiType bool
		want      string
	}{
		{"default single", "", "column", "svg", true, false, "stack.svg"},
		{"explicit single", "oreo.svg", "column", "svg", true, false, "oreo.svg"},
		{"base for several formats", "oreo.svg", "column", "png", false, false, "oreo.png"},
		{"several types", "oreo", "nodelink", "svg", false, true, "oreo_nodelink.svg"},
		{"unknown extension kept", "out.v1", "column", "pdf", false, false, "out.v1.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputPath(tt.output, tt.vizType, tt.format, tt.single, tt.multiType))
		})
	}
}

func TestRenderCommandLine(t *testing.T) {
	s := stack.OfKinds(nil, layer.TopImage, layer.LabelImage, layer.Spacer)
	assert.Equal(t, "stackbuilder render top label spacer", renderCommandLine(s))
}

func TestRenderWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oreo.svg")

	_, err := runCLI(t, "", "render", "--no-cache", "-o", path, "top", "label", "bottom")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("<svg")))
}

func TestRenderScriptToStdout(t *testing.T) {
	out, err := runCLI(t, "top re # cookie\n& bottom\n", "render", "--no-cache", "--script", "-", "-f", "json", "-o", "-")
	require.NoError(t, err)

	var l struct {
		Blocks []struct {
			Kind   string `json:"kind"`
			Offset int    `json:"offset"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &l))
	require.Len(t, l.Blocks, 4)
	assert.Equal(t, "label", l.Blocks[1].Kind)
	assert.Equal(t, -100, l.Blocks[1].Offset)
	assert.Equal(t, 0, l.Blocks[2].Offset)
}

func TestRenderNodelinkDOT(t *testing.T) {
	out, err := runCLI(t, "", "render", "--no-cache", "-t", "nodelink", "-f", "dot", "-o", "-", "top", "top")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "-136")
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown action", []string{"render", "--no-cache", "-o", "-", "cream"}, errors.ErrCodeInvalidAction},
		{"bad format", []string{"render", "--no-cache", "-f", "gif", "-o", "-", "top"}, errors.ErrCodeInvalidFormat},
		{"bad style", []string{"render", "--no-cache", "--style", "neon", "-o", "-", "top"}, errors.ErrCodeInvalidStyle},
		{"stdout with several outputs", []string{"render", "--no-cache", "-f", "svg,json", "-o", "-", "top"}, errors.ErrCodeInvalidInput},
		{"missing script", []string{"render", "--script", "/does/not/exist"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestTableCommand(t *testing.T) {
	out, err := runCLI(t, "", "table")
	require.NoError(t, err)
	for _, want := range []string{"Current", "(end)", "-136", "+60", "fallback"} {
		assert.Contains(t, out, want)
	}

	out, err = runCLI(t, "", "table", "top", "re")
	require.NoError(t, err)
	assert.Contains(t, out, "-108")
	assert.Contains(t, out, "rule 2")

	_, err = runCLI(t, "", "table", "cream")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidKind))
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	_, err := runCLI(t, "", "--config", path, "config", "init")
	require.NoError(t, err)
	require.FileExists(t, path)

	out, err := runCLI(t, "", "--config", path, "config", "show", "--toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[serve]")

	out, err = runCLI(t, "", "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "nope.toml"), "table")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestPlayNeedsTerminal(t *testing.T) {
	_, err := runCLI(t, "", "play")
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func keyPress(s string) tea.KeyMsg {
	if s == "backspace" {
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPlayModel(t *testing.T) {
	store := stack.NewStore(stack.WithIDGenerator(layer.SequentialIDs("p")))
	var m tea.Model = newPlayModel(store, layout.Options{}, true)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})

	for _, k := range []string{"t", "r", "b"} {
		m, _ = m.Update(keyPress(k))
	}
	assert.Equal(t, []layer.Kind{layer.TopImage, layer.LabelImage, layer.BottomImage}, store.State().Kinds())
	assert.Equal(t, "add-bottom", m.(playModel).status)

	m, _ = m.Update(keyPress("backspace"))
	assert.Equal(t, 2, store.State().Len())

	m, _ = m.Update(keyPress("u"))
	assert.Equal(t, 3, store.State().Len())
	assert.Equal(t, "undo", m.(playModel).status)

	m, _ = m.Update(keyPress("c"))
	assert.True(t, store.State().IsEmpty())

	m, _ = m.Update(keyPress("d"))
	assert.Equal(t, "no change", m.(playModel).status)

	view := m.View()
	assert.Contains(t, view, "stackbuilder")
	assert.Contains(t, view, "0 layers")
}

func TestPlayModelFollowsBottom(t *testing.T) {
	store := stack.NewStore()
	var m tea.Model = newPlayModel(store, layout.Options{}, false)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})

	for i := 0; i < 20; i++ {
		m, _ = m.Update(keyPress("t"))
	}
	assert.True(t, m.(playModel).viewport.AtBottom())
}

func TestPlayModelQuit(t *testing.T) {
	m := newPlayModel(stack.NewStore(), layout.Options{}, false)
	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
