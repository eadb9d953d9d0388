//nolint:thelper,whitespace,lll,funlen // ok for tests
package track

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/mpapenbr/racetrack-sim-go/pkg/cmd/util"
	"github.com/mpapenbr/racetrack-sim-go/pkg/config"
	"github.com/mpapenbr/racetrack-sim-go/pkg/inspect"
)

func setTrack(t *testing.T, name string, checkpoints int, q string) {
	oldName, oldFile, oldCp, oldQuery := config.TrackName, config.TrackFile, config.Checkpoints, query
	t.Cleanup(func() {
		config.TrackName, config.TrackFile, config.Checkpoints, query = oldName, oldFile, oldCp, oldQuery
	})
	config.TrackName, config.TrackFile, config.Checkpoints, query = name, "", checkpoints, q
}

func TestInspectOnce_Report(t *testing.T) {
	setTrack(t, "oval", 3, "")
	var buf bytes.Buffer
	assert.NilError(t, inspectOnce(context.Background(), &buf))

	var r inspect.Report
	assert.NilError(t, json.Unmarshal(buf.Bytes(), &r))
	assert.Equal(t, r.Name, "oval")
	assert.Equal(t, len(r.Checkpoints), 3)
	assert.Assert(t, math.Abs(r.Width.Min-14) < 1e-9)
}

func TestInspectOnce_Query(t *testing.T) {
	setTrack(t, "hills", 4, "$.terrain")
	var buf bytes.Buffer
	assert.NilError(t, inspectOnce(context.Background(), &buf))
	assert.Equal(t, buf.String(), "\"waves\"\n")
}

func TestInspectOnce_NoTrack(t *testing.T) {
	setTrack(t, "", 4, "")
	assert.ErrorIs(t, inspectOnce(context.Background(), &bytes.Buffer{}), util.ErrNoTrack)
}

func TestInspectData_UsesGivenContent(t *testing.T) {
	setTrack(t, "", 4, "")
	hills, err := os.ReadFile(filepath.Join("..", "..", "trackdef", "tracks", "hills.yaml"))
	assert.NilError(t, err)
	oval, err := os.ReadFile(filepath.Join("..", "..", "trackdef", "tracks", "oval.yaml"))
	assert.NilError(t, err)
	// the file on disk already moved on, the report follows the given content
	fn := filepath.Join(t.TempDir(), "edited.yaml")
	assert.NilError(t, os.WriteFile(fn, oval, 0o600))

	var buf bytes.Buffer
	assert.NilError(t, inspectData(&buf, fn, hills))
	var r inspect.Report
	assert.NilError(t, json.Unmarshal(buf.Bytes(), &r))
	assert.Equal(t, r.Name, "hills")
	assert.Equal(t, len(r.Checkpoints), 4)
}

func TestInspectData_NameFromFile(t *testing.T) {
	setTrack(t, "", 4, "$.name")
	hills, err := os.ReadFile(filepath.Join("..", "..", "trackdef", "tracks", "hills.yaml"))
	assert.NilError(t, err)
	unnamed := bytes.Replace(hills, []byte("name: hills\n"), nil, 1)

	var buf bytes.Buffer
	assert.NilError(t, inspectData(&buf, filepath.Join(t.TempDir(), "edited.yaml"), unnamed))
	assert.Equal(t, buf.String(), "\"edited\"\n")
}
