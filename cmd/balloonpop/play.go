package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/balloonpop/internal/app"
	"github.com/ayusman/balloonpop/internal/audio"
	"github.com/ayusman/balloonpop/internal/capture"
	"github.com/ayusman/balloonpop/internal/config"
	"github.com/ayusman/balloonpop/internal/game"
	"github.com/ayusman/balloonpop/internal/render"
	"github.com/ayusman/balloonpop/internal/server"
	"github.com/ayusman/balloonpop/internal/store"
	"github.com/ayusman/balloonpop/internal/tray"
)

var (
	flagMode   string
	flagCamera int
	flagFPS    int
	flagSeed   int64
	flagAssets string
	flagServe  string
	flagTray   bool
	flagMute   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the game",
	Long: `Open the camera window and start a round.

Controls:
  Index finger  - Point at a balloon to pop it
  Fist          - Hold over "Replay" on the game-over screen (replay, guided)
  Esc/Q         - Quit

Modes:
  classic - One round, ends on a "Time UP" screen
  replay  - Game-over screen with high score and a replay button
  guided  - Replay plus title, instructions and a fingertip cursor

Examples:
  balloonpop play
  balloonpop play --mode classic --seed 42
  balloonpop play --camera 1 --fps 60
  balloonpop play --serve :8080 --tray`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	addPlayFlags(playCmd)
}

// addPlayFlags registers the game flags on cmd. The root command runs play
// by default, so both carry them.
func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagMode, "mode", "", "Game mode: classic, replay, guided")
	cmd.Flags().IntVar(&flagCamera, "camera", 0, "Camera device index")
	cmd.Flags().IntVar(&flagFPS, "fps", 0, "Loop rate (frames per second)")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	cmd.Flags().StringVar(&flagAssets, "assets", "", "Directory with balloons/, pop/ and font/")
	cmd.Flags().StringVar(&flagServe, "serve", "", "Start the spectator server on this address, e.g. :8080")
	cmd.Flags().BoolVar(&flagTray, "tray", false, "Show the system tray menu")
	cmd.Flags().BoolVar(&flagMute, "mute", false, "Disable sound cues")
}

// applyPlayFlags overrides cfg with the flags set on the command line.
func applyPlayFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = flagMode
	}
	if flags.Changed("camera") {
		cfg.Camera.Device = flagCamera
	}
	if flags.Changed("fps") {
		cfg.FPS = flagFPS
	}
	if flags.Changed("seed") {
		cfg.Game.Seed = flagSeed
	}
	if flags.Changed("assets") {
		cfg.Assets.Dir = flagAssets
	}
	if flags.Changed("serve") {
		cfg.Server.Addr = flagServe
	}
	if flags.Changed("tray") {
		cfg.Tray.Enabled = flagTray
	}
	if flagMute {
		cfg.Audio.Enabled = false
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyPlayFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := newGame(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer g.Close()

	if !cfg.Tray.Enabled {
		return g.run(ctx)
	}

	// The tray owns the main thread. The window is created by its first
	// Show, on the game loop's locked thread.
	t := tray.New(g.audio.Enabled())
	g.app.SetScoreBoard(t)
	t.OnToggle(g.app.SetSoundEnabled)
	t.OnQuit(stop)
	if g.addr != "" {
		url := "http://" + localAddr(g.addr)
		t.OnScoreboard(func() {
			if err := openBrowser(url); err != nil {
				logger.Warn("failed to open browser", "url", url, "err", err)
			}
		})
	}

	errCh := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		errCh <- g.run(ctx)
		t.Quit()
	}()
	t.Run()
	stop()
	return <-errCh
}

// gameRuntime is everything the play command opened.
type gameRuntime struct {
	cfg     config.Config
	logger  *log.Logger
	app     *app.App
	assets  *render.Assets
	display render.Display
	audio   audio.Player
	store   *store.Store
	server  *server.Server
	addr    string
}

// newGame opens the components named by cfg. Only the assets are required;
// store, audio and server failures are logged and the feature is skipped.
func newGame(ctx context.Context, cfg config.Config, logger *log.Logger) (*gameRuntime, error) {
	g := &gameRuntime{cfg: cfg, logger: logger}

	assetsDir, err := config.ExpandHome(cfg.Assets.Dir)
	if err != nil {
		return nil, err
	}
	assets, err := render.LoadAssets(assetsDir, game.DefaultVariants, game.DefaultPopFrames, logger)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	g.assets = assets

	g.store = openStore(cfg.Store.Path, logger)
	g.audio = openAudio(cfg.Audio, g.store, logger)

	g.display = render.NewWindow("Balloon Pop", cfg.Screen.Width, cfg.Screen.Height)

	appCfg := app.Config{
		Mode:   cfg.GameMode(),
		Rules:  cfg.GameRules(assets.SpriteSizes()),
		FPS:    cfg.FPS,
		Mirror: cfg.Camera.Mirror,
		Motion: app.MotionConfig{
			Gate:      cfg.Motion.GateGameOver,
			Threshold: cfg.Motion.Threshold,
			Hold:      cfg.Motion.HoldTicks,
			Sample:    cfg.Motion.SampleTicks,
		},
		Seed:     cfg.Game.Seed,
		Camera:   capture.NewCamera(cfg.Capture()),
		Detector: app.NewDetector(cfg.Hands(), logger),
		Renderer: render.NewRenderer(assets, cfg.Screen.Width, cfg.Screen.Height),
		Display:  g.display,
		Audio:    g.audio,
		Store:    g.store,
		Logger:   logger,
	}

	if cfg.Server.Addr != "" {
		frames := server.NewFrameHub()
		events := server.NewEventHub(logger)
		staticDir := cfg.Server.StaticDir
		if staticDir == "" {
			staticDir = findWebDir()
		}
		g.server = server.New(server.Config{
			StaticDir: staticDir,
			Store:     g.store,
			Frames:    frames,
			Events:    events,
			Logger:    logger,
		})
		g.addr = cfg.Server.Addr
		appCfg.Frames = frames
		appCfg.Events = events
	}

	a, err := app.New(appCfg)
	if err != nil {
		g.Close()
		return nil, err
	}
	g.app = a
	return g, nil
}

// run serves the spectator server, if any, and plays until ctx is done or
// the window closes. It must run on the thread that drives the window.
func (g *gameRuntime) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer g.display.Close()

	if g.server != nil {
		go func() {
			if err := g.server.ListenAndServe(ctx, g.addr); err != nil {
				g.logger.Error("server stopped", "err", err)
			}
		}()
	}

	g.logger.Info("starting game", "mode", g.cfg.Mode, "fps", g.cfg.FPS, "camera", g.cfg.Camera.Device)
	if err := g.app.Run(ctx); err != nil {
		return err
	}
	if s := g.app.Session(); s != nil {
		g.logger.Info("game closed", "score", s.Score(), "high_score", s.HighScore())
	}
	return nil
}

// Close releases every component newGame opened.
func (g *gameRuntime) Close() {
	if g.app != nil {
		if err := g.app.Close(); err != nil {
			g.logger.Warn("close app", "err", err)
		}
	}
	if g.assets != nil {
		g.assets.Close()
	}
	if g.audio != nil {
		g.audio.Close()
	}
	if g.store != nil {
		g.store.Close()
	}
}

// openStore opens the round history, or returns nil when path is empty or
// the database cannot be opened.
func openStore(path string, logger *log.Logger) *store.Store {
	if path == "" {
		return nil
	}
	path, err := config.ExpandHome(path)
	if err != nil {
		logger.Warn("round history disabled", "err", err)
		return nil
	}
	st, err := store.New(path)
	if err != nil {
		logger.Warn("round history disabled", "path", path, "err", err)
		return nil
	}
	logger.Debug("opened round history", "path", path)
	return st
}

// openAudio starts the speaker. The saved sound setting, when present,
// decides whether cues start enabled.
func openAudio(cfg config.AudioConfig, st *store.Store, logger *log.Logger) audio.Player {
	if !cfg.Enabled {
		return audio.Nop{}
	}
	sm := audio.NewSoundManager(cfg.Volume)
	if err := sm.Initialize(); err != nil {
		logger.Warn("sound disabled", "err", err)
		return audio.Nop{}
	}
	if st != nil {
		sm.SetEnabled(st.Settings().Bool(store.SettingSoundEnabled, true))
	}
	return sm
}

// findWebDir searches for the spectator page in common locations.
// It checks: "web", "../web", "../../web", and ~/.balloonpop/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".balloonpop", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}

// localAddr turns a listen address like ":8080" into one a browser can open.
func localAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
