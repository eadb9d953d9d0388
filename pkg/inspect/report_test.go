//nolint:thelper,whitespace,lll,funlen // ok for tests
package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetrack-sim-go/pkg/trackdef"
)

func hillsReport(t *testing.T) Report {
	f, err := trackdef.Embedded("hills")
	require.NoError(t, err)
	tr, err := f.Build()
	require.NoError(t, err)
	return NewReport(f, tr, 4)
}

func TestNewReport(t *testing.T) {
	r := hillsReport(t)
	assert.Equal(t, "hills", r.Name)
	assert.Equal(t, "waves", r.Terrain)
	assert.Equal(t, 8, r.ControlPoints)
	assert.Positive(t, r.Segments)
	assert.Positive(t, r.Length)
	assert.Equal(t, 0, r.Loops)
	assert.Equal(t, 0, r.InvertedSamples)
	assert.LessOrEqual(t, r.Width.Min, r.Width.Max)
	assert.Less(t, r.Height.Min, r.Height.Max)

	require.Len(t, r.Regions, 2)
	assert.Equal(t, "tunnel", r.Regions[0].Kind)
	assert.Positive(t, r.Regions[0].Segments)
	assert.Greater(t, r.Regions[0].Length, 0.0)
	assert.Less(t, r.Regions[0].Length, r.Length)

	require.Len(t, r.Checkpoints, 4)
	assert.Equal(t, 0, r.Checkpoints[0].Segment)
	for i := 1; i < 4; i++ {
		assert.Greater(t, r.Checkpoints[i].Segment, r.Checkpoints[i-1].Segment)
	}
}

func TestQuery(t *testing.T) {
	r := hillsReport(t)
	tests := []struct {
		name string
		expr string
		want []any
	}{
		{name: "scalar", expr: "$.name", want: []any{"hills"}},
		{name: "region kinds", expr: "$.regions[*].kind", want: []any{"tunnel", "palms"}},
		{name: "filter", expr: `$.regions[?(@.kind == "palms")].kind`, want: []any{"palms"}},
		{name: "no match", expr: "$.unknown", want: []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Query(r, tt.expr)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestQuery_Invalid(t *testing.T) {
	_, err := Query(Report{}, "$.regions[")
	assert.Error(t, err)
}
