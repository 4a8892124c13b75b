package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/vfxgraph/pkg/graph"
)

func browserFixture() graph.Graph {
	return graph.Graph{
		Version: 10,
		Nodes: []graph.Node{
			{ID: "system/0", Kind: "System", Label: "System"},
			{ID: "system/0/context/0", Kind: "Context", Label: "spawn", Parent: "system/0",
				Ports: []graph.Port{{ID: "system/0/context/0/port/0", Name: "rate", Type: "float", Value: "10"}}},
			{ID: "system/0/context/0/block/0", Kind: "Block", Label: "set_color", Parent: "system/0/context/0",
				Meta: map[string]any{"disabled": true}},
			{ID: "model/0", Kind: "SpawnerNode", Label: "Spawner"},
			{ID: "model/1", Kind: "EventNode", Label: "OnPlay"},
		},
		Edges: []graph.Edge{
			{From: "model/0", To: "system/0/context/0", Kind: graph.EdgeSpawn},
			{From: "model/1", To: "model/0", Kind: graph.EdgeStart},
		},
	}
}

func press(m browserModel, keys ...string) browserModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(browserModel)
	}
	return m
}

func rowIDs(m browserModel) []string {
	ids := make([]string, len(m.rows))
	for i, r := range m.rows {
		ids[i] = r.node.ID
	}
	return ids
}

func TestBrowserInitialRows(t *testing.T) {
	m := newBrowserModel(browserFixture(), "fx.vfx")

	// Roots start expanded, deeper nodes collapsed.
	want := []string{"system/0", "system/0/context/0", "model/0", "model/1"}
	got := rowIDs(m)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestBrowserExpandCollapse(t *testing.T) {
	m := newBrowserModel(browserFixture(), "fx.vfx")

	m = press(m, "down", "enter")
	if len(m.rows) != 5 || m.rows[2].node.ID != "system/0/context/0/block/0" {
		t.Fatalf("expand context: rows = %v", rowIDs(m))
	}
	if m.rows[2].depth != 2 {
		t.Errorf("block depth = %d, want 2", m.rows[2].depth)
	}

	// Left on a leaf jumps to its parent, left again collapses it.
	m = press(m, "down", "left")
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1 after left on leaf", m.cursor)
	}
	m = press(m, "left")
	if len(m.rows) != 4 {
		t.Errorf("collapse: rows = %v", rowIDs(m))
	}
}

func TestBrowserCursorBounds(t *testing.T) {
	m := newBrowserModel(browserFixture(), "fx.vfx")

	m = press(m, "up", "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	m = press(m, "j", "j", "j", "j", "j", "j")
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor = %d, want %d", m.cursor, len(m.rows)-1)
	}
}

func TestBrowserQuit(t *testing.T) {
	m := newBrowserModel(browserFixture(), "fx.vfx")
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Errorf("%v: expected quit command", k)
		}
	}
}

func TestBrowserView(t *testing.T) {
	m := newBrowserModel(browserFixture(), "fx.vfx")
	m = press(m, "down")

	out := m.View()
	for _, want := range []string{"fx.vfx", "version 10", "spawn", "rate", "10", "spawn ← model/0"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBrowserEmptyGraph(t *testing.T) {
	m := newBrowserModel(graph.Graph{}, "empty.vfx")
	m = press(m, "down", "enter", "left")
	if !strings.Contains(m.View(), "empty graph") {
		t.Error("empty graph placeholder not shown")
	}
}
