package main

import (
	"flag"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/younwookim/engine2d/internal/application/game"
	"github.com/younwookim/engine2d/internal/application/input"
	"github.com/younwookim/engine2d/internal/application/replay"
	"github.com/younwookim/engine2d/internal/application/scene/sandbox"
	"github.com/younwookim/engine2d/internal/application/system"
	"github.com/younwookim/engine2d/internal/ecs"
	"github.com/younwookim/engine2d/internal/infrastructure/assets"
	"github.com/younwookim/engine2d/internal/infrastructure/config"
	"github.com/younwookim/engine2d/internal/infrastructure/logging"
)

func main() {
	os.Exit(launch())
}

// launch runs the engine and returns the process exit code. Deferred
// cleanup runs before main exits.
func launch() int {
	configDir := flag.String("config", "", "Config directory (default: embedded configs)")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory")
	recordFlag := flag.String("record", "", "Record input to file (e.g., -record replay.json)")
	replayFlag := flag.String("replay", "", "Play input back from a recording")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		log.Printf("Unknown profile mode %q (want cpu or mem)", *profileMode)
		return 2
	}

	loader, err := newConfigLoader(*configDir)
	if err != nil {
		log.Printf("Failed to open configs: %v", err)
		return 1
	}
	cfg, err := loader.LoadEngine()
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Printf("Failed to build logger: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, loader, logger, *recordFlag, *replayFlag); err != nil {
		logger.Error("engine stopped", zap.Error(err))
		return 1
	}
	return 0
}

func newConfigLoader(dir string) (*config.Loader, error) {
	if dir != "" {
		return config.NewLoader(dir), nil
	}
	fsys, err := fs.Sub(configFS, "configs")
	if err != nil {
		return nil, err
	}
	return config.NewFSLoader(fsys, "configs"), nil
}

func run(cfg *config.EngineConfig, loader *config.Loader, logger *zap.Logger, recordFile, replayFile string) error {
	startScene := cfg.Game.StartScene
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var source input.Query = input.NewEbiten()
	if replayFile != "" {
		data, err := replay.LoadReplay(replayFile)
		if err != nil {
			return err
		}
		rp := replay.NewReplayer(*data)
		source = rp
		seed = rp.Seed()
		if rp.Scene() != "" {
			startScene = rp.Scene()
		}
		logger.Info("replaying", zap.String("file", replayFile), zap.Int("frames", rp.TotalFrames()))
	}
	var recorder *replay.Recorder
	if recordFile != "" {
		recorder = replay.NewRecorder(seed, startScene)
		source = recorder.Tee(source)
		logger.Info("recording", zap.String("file", recordFile), zap.Int64("seed", seed))
	}

	world := ecs.NewWorld()
	sched := ecs.NewScheduler(world, cfg.ECS.Options(), logger.Named("ecs"))
	textures := assets.NewTextureLoader(loader.FS(), logger.Named("assets"))
	defer textures.Close()

	latch := &input.Latch{}
	globals, err := system.RegisterGlobals(sched, latch, cfg.Collision, logger)
	if err != nil {
		return err
	}

	start := sandbox.New(sandbox.Deps{
		Scheduler: sched,
		Configs:   loader,
		Textures:  textures,
		Input:     latch,
		Render:    globals.Render,
		DebugDraw: cfg.Collision.DebugDraw,
		Seed:      seed,
		Logger:    logger,
	}, startScene)

	g, err := game.New(game.Config{
		Scheduler: sched,
		Input:     source,
		Latch:     latch,
		Width:     cfg.Window.ScreenWidth,
		Height:    cfg.Window.ScreenHeight,
		DT:        cfg.Window.DT(),
		Logger:    logger,
	}, start)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(cfg.Window.ScreenWidth*cfg.Window.Scale, cfg.Window.ScreenHeight*cfg.Window.Scale)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetTPS(cfg.Window.TPS)

	runErr := ebiten.RunGame(g)
	g.Close()

	if recorder != nil {
		saveRecording(recorder, recordFile, logger)
	}
	return runErr
}

func saveRecording(r *replay.Recorder, filename string, logger *zap.Logger) {
	if err := r.Save(filename); err != nil {
		logger.Warn("failed to save recording", zap.Error(err))
		return
	}
	logger.Info("recording saved", zap.String("file", filename), zap.Int("frames", r.FrameCount()))
}
