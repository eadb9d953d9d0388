//nolint:thelper,whitespace,lll,funlen // ok for tests
package simulate

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetrack-sim-go/pkg/race"
	"github.com/mpapenbr/racetrack-sim-go/pkg/simulation"
)

func sampleResults() []simulation.CarResult {
	return []simulation.CarResult{
		{
			ID:    uuid.MustParse("6f1e1d4e-4c8a-4f51-9d0e-0a4f0e5c1a11"),
			Name:  "car-1",
			Steps: 3600,
			Progress: race.Progress{
				CurrentLap:  1,
				BestLapTime: 31.23456,
				LapTimes:    []float64{31.23456},
				RaceTime:    31.23456,
				IsGameOver:  true,
				IsVictory:   true,
				State:       race.StateWon,
				Reason:      race.ReasonFinished,
			},
			Scrapes: 2,
		},
	}
}

func TestPrintResults_Text(t *testing.T) {
	output = "text"
	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, sampleResults()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "CAR")
	assert.Equal(t, []string{"car-1", "won", "1", "31.235", "31.235", "0", "2", "0"}, strings.Fields(lines[1]))
}

func TestPrintResults_JSON(t *testing.T) {
	output = "json"
	t.Cleanup(func() { output = "text" })
	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, sampleResults()))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "car-1", got[0]["name"])
	result, ok := got[0]["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "won", result["state"])
	assert.Equal(t, "finished", result["reason"])
}
