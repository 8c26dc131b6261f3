// Command voxelcore runs the engine headless: a scripted viewer flies over
// the world while the streamer keeps chunks loaded and meshed around it.
// Useful for profiling generation and streaming without a renderer.
package main

import (
	"flag"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xlab/closer"
	"go.uber.org/zap"

	"voxelcore/internal/block"
	"voxelcore/internal/config"
	"voxelcore/internal/frustum"
	"voxelcore/internal/meshing"
	"voxelcore/internal/metrics"
	"voxelcore/internal/profiling"
	"voxelcore/internal/world"
)

const (
	tickInterval = 16 * time.Millisecond
	statsEvery   = 2 * time.Second
	flightRadius = 300.0
	flightHeight = 90.0
	flightSpeed  = 0.05 // radians per second
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	duration := flag.Duration("duration", 0, "how long to fly (0 = until interrupted)")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	seed := cfg.World.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	registry := block.NewRegistry()
	opts := []world.Option{world.WithLogger(log)}
	if !cfg.World.GenerateFeatures {
		opts = append(opts, world.WithFeatures(nil))
	}
	w := world.New(registry, seed, opts...)

	builder := meshing.NewBuilder(registry)
	mesher := meshing.NewMesher(builder)
	w.Graph().SetUnloadCallback(mesher.Drop)

	var stats *metrics.Streaming
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		stats = metrics.NewStreaming(reg, w.ID().String())
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		closer.Bind(func() { srv.Close() })
		log.Info("metrics endpoint up", zap.String("addr", cfg.Metrics.Addr))
	}

	streamer := world.NewStreamer(w, cfg.Stream, log, stats)
	closer.Bind(func() {
		if err := streamer.Close(5 * time.Second); err != nil {
			log.Warn("streamer shutdown", zap.Error(err))
		}
	})

	stop := make(chan struct{})
	closer.Bind(func() { close(stop) })

	go fly(w, streamer, mesher, log, *duration, stop)

	log.Info("flight started",
		zap.Int64("seed", seed),
		zap.Int("load_radius", cfg.Stream.LoadRadius),
		zap.Int("unload_radius", cfg.Stream.UnloadRadius))
	closer.Hold()
}

// fly moves the viewer in a circle and runs one streaming frame per tick.
func fly(w *world.World, streamer *world.Streamer, mesher *meshing.Mesher,
	log *zap.Logger, duration time.Duration, stop <-chan struct{}) {

	proj := mgl32.Perspective(mgl32.DegToRad(70), 16.0/9.0, 0.1, 1000)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	timer := profiling.NewFrameTimer()
	start := time.Now()
	lastStats := start

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		if duration > 0 && time.Since(start) > duration {
			log.Info("flight complete", zap.Duration("flew", time.Since(start)))
			closer.Close()
			return
		}

		profiling.ResetFrame()
		frameMs := timer.Tick()

		angle := time.Since(start).Seconds() * flightSpeed
		eye := mgl32.Vec3{
			float32(math.Cos(angle) * flightRadius),
			flightHeight,
			float32(math.Sin(angle) * flightRadius),
		}
		// Look along the flight path tangent.
		viewDir := mgl32.Vec3{
			float32(-math.Sin(angle)),
			0,
			float32(math.Cos(angle)),
		}

		view := mgl32.LookAtV(eye, eye.Add(viewDir), mgl32.Vec3{0, 1, 0})
		f := frustum.FromClip(proj.Mul4(view))

		func() {
			defer profiling.Track("world.StreamUpdate")()
			streamer.Update(eye, viewDir, f.TestFunc(16), frameMs)
		}()

		func() {
			defer profiling.Track("meshing.Rebuild")()
			remeshDirty(w, mesher)
		}()

		if time.Since(lastStats) >= statsEvery {
			log.Info("streaming",
				zap.Int("loaded", w.Graph().Len()),
				zap.Int("pending", streamer.PendingCount()),
				zap.Int("meshes", mesher.Len()),
				zap.Float64("frame_ms", frameMs),
				zap.Duration("mesh_time", profiling.SumWithPrefix("meshing.")),
				zap.String("hot", profiling.TopN(3)))
			lastStats = time.Now()
		}
	}
}

// remeshDirty rebuilds meshes for chunks whose content or neighborhood
// changed since the last tick.
func remeshDirty(w *world.World, mesher *meshing.Mesher) {
	for _, pos := range w.Graph().Positions() {
		c := w.Graph().At(pos)
		if c != nil && c.MeshDirty() {
			mesher.Mesh(c)
		}
	}
}
