package dashboard

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

var ErrUnbrokenCycle = errors.New("callback cycle without a no-selection default")

// Port is one property of a UI component, e.g. "histogram.click".
type Port struct {
	Component string `json:"component"`
	Property  string `json:"property"`
}

func (p Port) String() string {
	return p.Component + "." + p.Property
}

// Edge is one reactive callback: a change on any input recomputes every output.
type Edge struct {
	Name    string `json:"name"`
	Inputs  []Port `json:"inputs"`
	Outputs []Port `json:"outputs"`

	// NoSelection means the callback renders a default when its input is empty.
	NoSelection bool `json:"no_selection"`
}

// Callbacks wires the controls of every tab to their charts.
var Callbacks = []Edge{
	{
		Name:    "trend",
		Inputs:  []Port{{"trend-years", "value"}, {"trend-metrics", "value"}},
		Outputs: []Port{{"trend-graph", "figure"}},
	},
	{
		Name:    "correlation",
		Inputs:  []Port{{"correlation-variable", "value"}},
		Outputs: []Port{{"correlation-graph", "figure"}, {"correlation-value", "children"}},
	},
	{
		Name:        "pie",
		Inputs:      []Port{{"histogram", "click"}},
		Outputs:     []Port{{"pie-chart", "figure"}},
		NoSelection: true,
	},
	{
		Name:        "histogram",
		Inputs:      []Port{{"pie-chart", "click"}},
		Outputs:     []Port{{"histogram", "figure"}},
		NoSelection: true,
	},
	{
		Name:        "map",
		Inputs:      []Port{{"property-map", "click"}},
		Outputs:     []Port{{"property-map", "figure"}, {"property-details", "children"}},
		NoSelection: true,
	},
}

// Cycles returns the groups of components that feed each other through
// callbacks. A component re-rendering itself from its own click is not
// reported. Groups and their members are sorted.
func Cycles(edges []Edge) [][]string {
	nodes := make(map[string]bool)
	for _, e := range edges {
		for _, p := range e.Inputs {
			nodes[p.Component] = true
		}
		for _, p := range e.Outputs {
			nodes[p.Component] = true
		}
	}

	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	sort.Strings(names)

	ids := make(map[string]int64, len(names))
	g := simple.NewDirectedGraph()
	for i, n := range names {
		ids[n] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		for _, in := range e.Inputs {
			for _, out := range e.Outputs {
				from, to := ids[in.Component], ids[out.Component]
				if from == to || g.HasEdgeFromTo(from, to) {
					continue
				}
				g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
			}
		}
	}

	var groups [][]string
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		group := make([]string, 0, len(scc))
		for _, n := range scc {
			group = append(group, names[n.ID()])
		}
		sort.Strings(group)
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

// Validate checks that every callback inside a cycle renders a default
// when nothing is selected, so the cycle settles after one pass.
func Validate(edges []Edge) error {
	groupOf := make(map[string]int)
	for i, group := range Cycles(edges) {
		for _, c := range group {
			groupOf[c] = i + 1
		}
	}

	for _, e := range edges {
		if e.NoSelection {
			continue
		}
		for _, in := range e.Inputs {
			for _, out := range e.Outputs {
				g := groupOf[in.Component]
				if g != 0 && g == groupOf[out.Component] {
					return fmt.Errorf("%w: %s (%s -> %s)", ErrUnbrokenCycle, e.Name, in, out)
				}
			}
		}
	}
	return nil
}
