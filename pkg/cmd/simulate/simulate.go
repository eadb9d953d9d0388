package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/cmd/util"
	"github.com/mpapenbr/racetrack-sim-go/pkg/config"
	"github.com/mpapenbr/racetrack-sim-go/pkg/race"
	"github.com/mpapenbr/racetrack-sim-go/pkg/session"
	"github.com/mpapenbr/racetrack-sim-go/pkg/simulation"
	"github.com/mpapenbr/racetrack-sim-go/pkg/telemetry"
	"github.com/mpapenbr/racetrack-sim-go/pkg/utils"
)

var output string

//nolint:funlen // by design
func NewSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "runs autopilot driven cars on a track",
		Long: `Runs one or more autopilot driven cars until every car has won, lost or
reached the maximum duration. Telemetry frames can be published to NATS.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.Context(), cmd.OutOrStdout())
		},
	}
	util.AddTrackFlags(cmd)
	cmd.Flags().IntVar(&config.Laps,
		"laps",
		race.DefaultLaps,
		"number of laps to win the race")
	cmd.Flags().IntVar(&config.Checkpoints,
		"checkpoints",
		race.DefaultCheckpoints,
		"number of checkpoints per lap (including start/finish)")
	cmd.Flags().IntVar(&config.Cars,
		"cars",
		1,
		"number of cars")
	cmd.Flags().Float64Var(&config.TargetSpeed,
		"target-speed",
		simulation.DefaultTargetSpeed,
		"autopilot target speed")
	cmd.Flags().IntVar(&config.StepRate,
		"step-rate",
		int(simulation.DefaultStepRate),
		"simulation steps per second")
	cmd.Flags().BoolVar(&config.Realtime,
		"realtime",
		false,
		"pace the simulation by the wall clock")
	cmd.Flags().StringVar(&config.MaxDuration,
		"max-duration",
		"10m",
		"stop a car after this simulated duration")
	cmd.Flags().IntVar(&config.PublishEvery,
		"publish-every",
		1,
		"publish every n-th frame")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"URL of the NATS server. Telemetry is published if set")
	cmd.Flags().StringVar(&config.NatsSubject,
		"nats-subject",
		telemetry.DefaultSubject,
		"subject prefix for telemetry frames")
	cmd.Flags().StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for the NATS server to be ready")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().StringVar(&config.TelemetryExporter,
		"telemetry-exporter",
		"otlp",
		"exporter for open telemetry data (otlp, stdout)")
	cmd.Flags().StringVarP(&output,
		"output",
		"o",
		"text",
		"result output format (text, json)")
	return cmd
}

//nolint:funlen,cyclop // by design
func runSimulation(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	_, tr, err := util.LoadTrack(ctx)
	if err != nil {
		return err
	}
	tuning, err := config.LoadTuning(viper.GetViper())
	if err != nil {
		return err
	}
	maxDuration, err := time.ParseDuration(config.MaxDuration)
	if err != nil {
		return fmt.Errorf("invalid max-duration: %w", err)
	}
	appConfig := config.FromFlags()
	log.Info("Starting simulation",
		log.String("track", tr.Name()),
		log.Int("segments", tr.SegmentCount()),
		log.Int("cars", appConfig.Cars),
		log.Int("laps", appConfig.Laps))

	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		if tel, err := config.SetupTelemetry(ctx); err == nil {
			defer tel.Shutdown()
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	recorder, err := telemetry.NewRecorder()
	if err != nil {
		return err
	}
	sinks := []simulation.Sink{recorder}
	if config.NatsURL != "" {
		if err := waitForNats(ctx); err != nil {
			return err
		}
		conn, err := nats.Connect(config.NatsURL, nats.Name("rts"))
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer conn.Close()
		hub := telemetry.NewHub("simulate")
		pub := telemetry.NewPublisher(conn,
			telemetry.WithSubject(config.NatsSubject),
			telemetry.WithPublisherLogger(log.Default().Named("nats")))
		stop := pub.Attach(ctx, hub)
		defer func() {
			stop()
			if err := conn.Flush(); err != nil {
				log.Warn("Could not flush nats connection", log.ErrorField(err))
			}
		}()
		sinks = append(sinks, hub)
		log.Info("Publishing telemetry",
			log.String("url", config.NatsURL),
			log.String("subject", config.NatsSubject))
	}

	runner := simulation.NewRunner(tr,
		simulation.WithCars(appConfig.Cars),
		simulation.WithStepRate(float64(appConfig.StepRate)),
		simulation.WithPacing(appConfig.Realtime),
		simulation.WithMaxDuration(maxDuration),
		simulation.WithPublishEvery(appConfig.PublishEvery),
		simulation.WithSessionOptions(
			session.WithTuning(tuning),
			session.WithTrackerOptions(
				race.WithLaps(appConfig.Laps),
				race.WithCheckpoints(appConfig.Checkpoints))),
		simulation.WithAutopilotOptions(simulation.WithTargetSpeed(appConfig.TargetSpeed)),
		simulation.WithSinks(sinks...))
	results, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	return printResults(out, results)
}

func waitForNats(ctx context.Context) error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil || timeout <= 0 {
		return nil
	}
	addr := utils.ExtractFromNatsURL(config.NatsURL)
	if addr == "" {
		return nil
	}
	return utils.WaitForTCP(ctx, addr, timeout)
}

func printResults(out io.Writer, results []simulation.CarResult) error {
	if output == "json" {
		type carSummary struct {
			ID      string       `json:"id"`
			Name    string       `json:"name"`
			Steps   int64        `json:"steps"`
			Crashes int          `json:"crashes"`
			Scrapes int          `json:"scrapes"`
			Stalls  int          `json:"stalls"`
			Result  race.Summary `json:"result"`
		}
		ret := make([]carSummary, len(results))
		for i, r := range results {
			ret[i] = carSummary{
				ID: r.ID.String(), Name: r.Name, Steps: r.Steps,
				Crashes: r.Crashes, Scrapes: r.Scrapes, Stalls: r.Stalls,
				Result: r.Progress.Summary(),
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ret)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CAR\tSTATE\tLAPS\tBEST\tTOTAL\tCRASHES\tSCRAPES\tSTALLS")
	for _, r := range results {
		s := r.Progress.Summary()
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%d\t%d\n",
			r.Name, s.State, s.Laps, s.BestLap.StringFixed(3), s.Total.StringFixed(3),
			r.Crashes, r.Scrapes, r.Stalls)
	}
	return w.Flush()
}
