package dashboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackCycles(t *testing.T) {
	cycles := Cycles(Callbacks)
	assert.Equal(t, [][]string{{"histogram", "pie-chart"}}, cycles)
	assert.NoError(t, Validate(Callbacks))
}

func TestValidateRejectsUnbrokenCycle(t *testing.T) {
	edges := []Edge{
		{Name: "a", Inputs: []Port{{"x", "click"}}, Outputs: []Port{{"y", "figure"}}, NoSelection: true},
		{Name: "b", Inputs: []Port{{"y", "click"}}, Outputs: []Port{{"x", "figure"}}},
	}
	err := Validate(edges)
	assert.ErrorIs(t, err, ErrUnbrokenCycle)
	assert.Contains(t, err.Error(), "y.click -> x.figure")
}

func TestCyclesLongerLoop(t *testing.T) {
	edges := []Edge{
		{Name: "ab", Inputs: []Port{{"a", "v"}}, Outputs: []Port{{"b", "v"}}},
		{Name: "bc", Inputs: []Port{{"b", "v"}}, Outputs: []Port{{"c", "v"}}},
		{Name: "ca", Inputs: []Port{{"c", "v"}}, Outputs: []Port{{"a", "v"}}},
		{Name: "cd", Inputs: []Port{{"c", "v"}}, Outputs: []Port{{"d", "v"}}},
		{Name: "self", Inputs: []Port{{"d", "click"}}, Outputs: []Port{{"d", "figure"}}},
	}
	assert.Equal(t, [][]string{{"a", "b", "c"}}, Cycles(edges))
	assert.Empty(t, Cycles(nil))
}

func TestCyclesDisjointGroups(t *testing.T) {
	edges := []Edge{
		{Name: "xy", Inputs: []Port{{"x", "click"}, {"x", "hover"}}, Outputs: []Port{{"y", "figure"}}},
		{Name: "yx", Inputs: []Port{{"y", "click"}}, Outputs: []Port{{"x", "figure"}}},
		{Name: "pq", Inputs: []Port{{"q", "click"}}, Outputs: []Port{{"p", "figure"}, {"q", "figure"}}},
		{Name: "qp", Inputs: []Port{{"p", "click"}}, Outputs: []Port{{"q", "figure"}}},
	}
	assert.Equal(t, [][]string{{"p", "q"}, {"x", "y"}}, Cycles(edges))
	assert.ErrorIs(t, Validate(edges), ErrUnbrokenCycle)
}

func TestBuildLayout(t *testing.T) {
	layout := BuildLayout([]int{2016, 2017})

	require.Len(t, layout.Tabs, 5)
	assert.Equal(t, "intro", layout.Tabs[0].ID)
	require.Len(t, layout.Tabs[0].Paragraphs, 3)
	assert.True(t, strings.HasPrefix(layout.Tabs[0].Paragraphs[0], "Welcome to Our Dash Application !"))
	assert.Equal(t, "trend", layout.DefaultTab)

	slider := layout.Tabs[1].Controls[0]
	assert.Equal(t, ControlRangeSlider, slider.Kind)
	assert.Equal(t, 2016, slider.Min)
	assert.Equal(t, 2017, slider.Max)
	assert.Equal(t, []int{2016, 2017}, slider.Default)
	assert.Equal(t, map[string]string{"2016": "2016", "2017": "2017"}, slider.Marks)

	metrics := layout.Tabs[1].Controls[1]
	assert.True(t, metrics.Multi)
	assert.Equal(t, []Option{
		{Label: "Price", Value: "price"},
		{Label: "Land", Value: "land"},
		{Label: "Area", Value: "area"},
	}, metrics.Options)

	radio := layout.Tabs[2].Controls[0]
	assert.Equal(t, "Landsize", radio.Default)
	assert.Len(t, radio.Options, 3)

	assert.Equal(t, Callbacks, layout.Edges)
}

func TestBuildLayoutEndpointsCoverOutputs(t *testing.T) {
	layout := BuildLayout([]int{2016})
	for _, tab := range layout.Tabs {
		for _, out := range tab.Outputs {
			assert.NotEmpty(t, tab.Endpoints[out], "tab %s output %s", tab.ID, out)
		}
	}

	comparison := layout.Tabs[3]
	assert.Equal(t, map[string]string{
		"pie-chart": "/api/comparison/pie",
		"histogram": "/api/comparison/histogram",
	}, comparison.Endpoints)
}

func TestBuildLayoutEmptyDataset(t *testing.T) {
	layout := BuildLayout(nil)
	slider := layout.Tabs[1].Controls[0]
	assert.Equal(t, []int{0, 0}, slider.Default)
	assert.Empty(t, slider.Marks)
}
