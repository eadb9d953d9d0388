package track

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fsnotify/fsnotify"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/cmd/util"
	"github.com/mpapenbr/racetrack-sim-go/pkg/config"
	"github.com/mpapenbr/racetrack-sim-go/pkg/inspect"
	"github.com/mpapenbr/racetrack-sim-go/pkg/race"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
	"github.com/mpapenbr/racetrack-sim-go/pkg/trackdef"
	"github.com/mpapenbr/racetrack-sim-go/pkg/utils"
)

var query string

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "builds a track and prints a report",
		Long: `Builds a track and prints a JSON report. With --query only the values
selected by the JSONPath expression are printed, e.g. --query '$.regions[*].kind'.
With --watch the track file is rebuilt whenever it changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Watch {
				if config.TrackFile == "" {
					return errors.New("--watch requires --track-file")
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return watch(ctx, cmd.OutOrStdout())
			}
			return inspectOnce(cmd.Context(), cmd.OutOrStdout())
		},
	}
	util.AddTrackFlags(cmd)
	cmd.Flags().IntVar(&config.Checkpoints,
		"checkpoints",
		race.DefaultCheckpoints,
		"number of checkpoints per lap (including start/finish)")
	cmd.Flags().StringVarP(&query,
		"query",
		"q",
		"",
		"JSONPath expression applied to the report")
	cmd.Flags().BoolVarP(&config.Watch,
		"watch",
		"w",
		false,
		"rebuild the track whenever the track file changes")
	return cmd
}

func inspectOnce(ctx context.Context, out io.Writer) error {
	f, tr, err := util.LoadTrack(ctx)
	if err != nil {
		return err
	}
	return writeReport(out, f, tr)
}

// inspectData builds the report from the content of filename.
func inspectData(out io.Writer, filename string, data []byte) error {
	f, err := trackdef.ParseFile(filename, data)
	if err != nil {
		return err
	}
	tr, err := f.Build(track.WithLogger(log.Default().Named("track")))
	if err != nil {
		return err
	}
	return writeReport(out, f, tr)
}

func writeReport(out io.Writer, f *trackdef.File, tr *track.Track) error {
	report := inspect.NewReport(f, tr, config.Checkpoints)
	if query == "" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	res, err := inspect.Query(report, query)
	if err != nil {
		return err
	}
	for _, v := range res {
		fmt.Fprintln(out, oj.JSON(v, 2))
	}
	return nil
}

//nolint:cyclop // by design
func watch(ctx context.Context, out io.Writer) error {
	logger := log.Default().Named("watch")
	lastHash := ""
	report := func() {
		data, err := os.ReadFile(config.TrackFile)
		if err != nil {
			logger.Warn("could not read track file", log.ErrorField(err))
			return
		}
		// editors tend to emit several events per save
		h := utils.HashContent(data)
		if h == lastHash {
			return
		}
		lastHash = h
		if err := inspectData(out, config.TrackFile, data); err != nil {
			logger.Error("could not build track", log.ErrorField(err))
		}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(config.TrackFile); err != nil {
		return fmt.Errorf("could not watch track file: %w", err)
	}
	report()
	for {
		select {
		case <-ctx.Done():
			logger.Info("context done, stopping watch")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				logger.Info("watcher events channel closed, stopping watch")
				return nil
			}
			logger.Debug("change detected",
				log.String("file", event.Name), log.Any("event", event))
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Info("track file changed, rebuilding", log.String("file", event.Name))
				report()
			}
			// editors often replace the file, the watch is gone then
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if err := watcher.Add(config.TrackFile); err != nil {
					logger.Warn("could not watch track file again", log.ErrorField(err))
				} else {
					report()
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				logger.Info("watcher errors channel closed, stopping watch")
				return nil
			}
			logger.Error("watcher error", log.ErrorField(err))
		}
	}
}
