package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/phaselight"
)

// Light is the read-only view of a traffic light the generators render
type Light interface {
	ID() string
	CurrentPhase() phaselight.Phase
	Transitions() uint64
}

// DOTGenerator generates Graphviz DOT format representations of traffic lights
type DOTGenerator struct {
	lights  []Light
	counts  map[string]int
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowCurrentPhase bool
	ShowCounts       bool
	RankDirection    string // "TB", "LR", "BT", "RL"
	NodeShape        string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowCurrentPhase: true,
		ShowCounts:       true,
		RankDirection:    "LR",
		NodeShape:        "circle",
	}
}

// NewDOTGenerator creates a new DOT generator rendering one cluster per light
func NewDOTGenerator(lights []Light, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		lights:  lights,
		options: opts,
	}
}

// WithTransitionCounts labels the edges with counts keyed "red->green" and
// "green->red", as reported by observers.MetricsObserver
func (g *DOTGenerator) WithTransitionCounts(counts map[string]int) *DOTGenerator {
	g.counts = counts
	return g
}

// Generate creates a DOT representation of the lights
func (g *DOTGenerator) Generate() (string, error) {
	if len(g.lights) == 0 {
		return "", fmt.Errorf("no lights to render")
	}

	var dot strings.Builder
	dot.WriteString("digraph TrafficLights {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	for i, light := range g.lights {
		g.generateLight(&dot, i, light)
	}

	dot.WriteString("}\n")
	return dot.String(), nil
}

// generateLight writes the two phase nodes and both transitions of one light
func (g *DOTGenerator) generateLight(dot *strings.Builder, index int, light Light) {
	id := light.ID()
	dot.WriteString(fmt.Sprintf("  subgraph cluster_%d {\n", index))
	dot.WriteString(fmt.Sprintf("    label=\"%s (%d transitions)\";\n", id, light.Transitions()))

	current := light.CurrentPhase()
	for _, phase := range []phaselight.Phase{phaselight.Red, phaselight.Green} {
		fill := "white"
		if g.options.ShowCurrentPhase && phase == current {
			fill = phase.String()
		}
		label := phase.String()
		if phase == phaselight.Red {
			label += "\\n(initial)"
		}
		dot.WriteString(fmt.Sprintf("    \"%s/%s\" [style=\"filled\" fillcolor=%s label=\"%s\"];\n",
			id, phase, fill, label))
	}

	for _, from := range []phaselight.Phase{phaselight.Red, phaselight.Green} {
		to := from.Toggle()
		edge := fmt.Sprintf("    \"%s/%s\" -> \"%s/%s\"", id, from, id, to)
		if g.options.ShowCounts && g.counts != nil {
			edge += fmt.Sprintf(" [label=\"%d\"]", g.counts[from.String()+"->"+to.String()])
		}
		dot.WriteString(edge + ";\n")
	}
	dot.WriteString("  }\n")
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG renders the DOT output through the Graphviz dot command
func (g *DOTGenerator) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}
