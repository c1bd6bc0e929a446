package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/reversesingularity/phobetron-orbital/core"
	"github.com/reversesingularity/phobetron-orbital/internal/logging"
	"github.com/reversesingularity/phobetron-orbital/internal/observability"
	"github.com/reversesingularity/phobetron-orbital/registry"
	"github.com/reversesingularity/phobetron-orbital/timectrl"
)

func main() {
	catalogPath := flag.String("catalog", "configs/bodies.json", "path to the body catalog JSON")
	duration := flag.Duration("duration", 60*time.Second, "total wall-clock run duration (0 = run forever)")
	tick := flag.Duration("tick", 100*time.Millisecond, "wall-clock tick interval")
	rate := flag.Float64("rate", 1.0, "simulation rate multiplier (0 = paused, negative = rewind)")
	startAt := flag.String("start", "", "simulation start instant, RFC 3339 (default: now)")
	parallel := flag.Bool("parallel", false, "propagate independent bodies concurrently")
	scale := flag.Float64("scale", 1.0, "linear factor from catalog distance units to viewer units")
	metricsAddr := flag.String("metrics-addr", "", "address to serve /metrics on (empty = disabled)")
	focus := flag.String("focus", "", "ID of a body whose position is logged every tick")

	flag.Parse()

	ctx := context.Background()
	log := logging.NewFromEnv()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewPropagationCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error(ctx, "metrics server failed", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsAddr))
	}

	reg := registry.New()

	f, err := os.Open(*catalogPath)
	if err != nil {
		log.Error(ctx, "failed to open body catalog",
			logging.String("path", *catalogPath),
			logging.String("error", err.Error()))
		os.Exit(1)
	}
	catalog, err := core.LoadBodyCatalog(reg, f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load body catalog", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "loaded body catalog",
		logging.String("path", *catalogPath),
		logging.Int("bodies", len(catalog.BodyIDs)))

	engine := core.NewEphemerisEngine(reg, core.EngineOptions{
		Log:         log,
		Recorder:    collector,
		ViewerScale: *scale,
		Parallel:    *parallel,
	})

	start := time.Now().UTC()
	if *startAt != "" {
		start, err = time.Parse(time.RFC3339, *startAt)
		if err != nil {
			log.Error(ctx, "invalid -start", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}

	tc := timectrl.NewTimeController(start, *tick, *rate)
	tc.AddListener(func(simTime time.Time) {
		epoch := timectrl.JulianDate(simTime)
		tickCtx, span := observability.StartTickSpan(ctx, epoch)
		updated := engine.Tick(tickCtx, epoch)
		span.End()

		if *focus == "" {
			return
		}
		if b := reg.Get(*focus); b != nil && b.State.Valid {
			log.Info(ctx, "body position",
				logging.String("body", b.ID),
				logging.Float64("epoch_jd", b.State.EpochJD),
				logging.Float64("x", b.State.Position.X),
				logging.Float64("y", b.State.Position.Y),
				logging.Float64("z", b.State.Position.Z),
				logging.Float64("range", b.State.Range),
				logging.Int("updated", updated))
		}
	})

	fmt.Printf("Simulating %d bodies from %s at %gx\n", reg.Len(), start.Format(time.RFC3339), *rate)
	<-tc.Start(*duration)
}
