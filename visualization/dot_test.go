package visualization_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anggasct/phaselight"
	"github.com/anggasct/phaselight/visualization"
)

func newLight(t *testing.T, id string) *phaselight.TrafficLight {
	t.Helper()
	light, err := phaselight.New(phaselight.WithID(id))
	if err != nil {
		t.Fatalf("Failed to create light: %v", err)
	}
	t.Cleanup(func() { _ = light.Close() })
	return light
}

func TestDOTGeneration(t *testing.T) {
	light := newLight(t, "main-street")

	generator := visualization.NewDOTGenerator([]visualization.Light{light})

	dotContent, err := generator.Generate()
	if err != nil {
		t.Fatalf("Failed to generate DOT: %v", err)
	}

	if !strings.Contains(dotContent, "digraph TrafficLights") {
		t.Error("DOT content should contain graph declaration")
	}

	if !strings.Contains(dotContent, "\"main-street/red\" -> \"main-street/green\"") {
		t.Error("DOT content should contain transition from red to green")
	}

	if !strings.Contains(dotContent, "\"main-street/green\" -> \"main-street/red\"") {
		t.Error("DOT content should contain transition from green to red")
	}

	if !strings.Contains(dotContent, "fillcolor=red") {
		t.Error("DOT content should highlight the current phase")
	}

	if !strings.Contains(dotContent, "(initial)") {
		t.Error("DOT content should mark the initial phase")
	}
}

func TestDOTGenerationWithCounts(t *testing.T) {
	a := newLight(t, "a")
	b := newLight(t, "b")

	dotContent, err := visualization.NewDOTGenerator([]visualization.Light{a, b}).
		WithTransitionCounts(map[string]int{"red->green": 3, "green->red": 2}).
		Generate()
	if err != nil {
		t.Fatalf("Failed to generate DOT: %v", err)
	}

	if !strings.Contains(dotContent, "cluster_0") || !strings.Contains(dotContent, "cluster_1") {
		t.Error("DOT content should contain one cluster per light")
	}
	if !strings.Contains(dotContent, "\"a/red\" -> \"a/green\" [label=\"3\"]") {
		t.Error("DOT content should label red->green with its count")
	}
	if !strings.Contains(dotContent, "\"b/green\" -> \"b/red\" [label=\"2\"]") {
		t.Error("DOT content should label green->red with its count")
	}
}

func TestDOTGenerationOptions(t *testing.T) {
	light := newLight(t, "plain")

	opts := visualization.DefaultDOTOptions()
	opts.ShowCurrentPhase = false
	opts.RankDirection = "TB"

	dotContent, err := visualization.NewDOTGenerator([]visualization.Light{light}, opts).Generate()
	if err != nil {
		t.Fatalf("Failed to generate DOT: %v", err)
	}

	if strings.Contains(dotContent, "fillcolor=red") {
		t.Error("current phase should not be highlighted")
	}
	if !strings.Contains(dotContent, "rankdir=TB") {
		t.Error("rank direction should be applied")
	}
	if strings.Contains(dotContent, "label=\"0\"") {
		t.Error("edges should not be labelled without counts")
	}
}

func TestDOTGenerationNoLights(t *testing.T) {
	if _, err := visualization.NewDOTGenerator(nil).Generate(); err == nil {
		t.Error("expected error for empty light list")
	}
}

func TestDOTGenerateToFile(t *testing.T) {
	light := newLight(t, "file")
	path := filepath.Join(t.TempDir(), "lights.dot")

	if err := visualization.NewDOTGenerator([]visualization.Light{light}).GenerateToFile(path); err != nil {
		t.Fatalf("Failed to write DOT file: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read DOT file: %v", err)
	}
	if !strings.HasPrefix(string(content), "digraph TrafficLights {") {
		t.Errorf("unexpected file content: %q", content)
	}
}
