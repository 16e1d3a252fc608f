package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sayraos/sayra/assistant"
	"github.com/sayraos/sayra/automation/actions"
	"github.com/sayraos/sayra/automation/desktop"
	"github.com/sayraos/sayra/brain"
	"github.com/sayraos/sayra/brain/memory"
	"github.com/sayraos/sayra/brain/providers"
	"github.com/sayraos/sayra/brain/reflex"
	"github.com/sayraos/sayra/brain/router"
	"github.com/sayraos/sayra/core/bus"
	"github.com/sayraos/sayra/core/config"
	"github.com/sayraos/sayra/pkg/worker"
	"github.com/sayraos/sayra/tools/websearch"
	"github.com/sayraos/sayra/ui/rest"
	ws "github.com/sayraos/sayra/ui/websocket"
	"github.com/sayraos/sayra/voice"
	"github.com/sayraos/sayra/watchers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant: API, websocket hub, voice loop, and watchers",
	Run:   serve,
}

var flagVoice bool

func init() {
	serveCmd.Flags().BoolVar(&flagVoice, "voice", false, "enable the microphone wake loop and speech output")
	rootCmd.AddCommand(serveCmd)
}

// vitals aggregates runtime counters for the dashboard.
type vitals struct {
	pool     *worker.Pool
	mem      memory.Store
	presence *watchers.PresenceMonitor
	version  string
}

func (v vitals) Vitals() map[string]any {
	count, err := v.mem.Count(context.Background())
	if err != nil {
		count = -1
	}
	return map[string]any{
		"version":      v.version,
		"worker_pool":  v.pool.GetStats(),
		"memories":     count,
		"user_present": v.presence.IsPresent(),
	}
}

// activitySensor treats recent input activity as presence. Simplest sensor
// that works headless; a camera-backed one slots in behind the same
// interface.
type activitySensor struct{}

func (activitySensor) Present(ctx context.Context) bool {
	idle, err := inputIdleTime(ctx)
	if err != nil {
		return true // sensor failure must not lock the user out
	}
	return idle < 30*time.Second
}

func serve(_ *cobra.Command, _ []string) {
	cfg := config.Global

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := bus.New()
	auto := desktop.NewExecAutomator()

	pool := worker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.Start(ctx)
	defer pool.Stop()

	local := providers.NewOllamaProvider(cfg.Brain.LocalBaseURL, cfg.Brain.LocalModel, cfg.Brain.EmbedModel)
	cloud := providers.NewGeminiProvider(cfg.Brain.CloudAPIKey, cfg.Brain.CloudModel)

	mem, err := memory.NewSQLiteStore(cfg.Memory.DBPath, local)
	if err != nil {
		logrus.Fatalf("Cannot open memory store: %v", err)
	}

	rt := router.New(reflex.NewMatcher(cfg.Identity), local)
	engine := actions.NewEngine(auto, websearch.NewClient(), pool, cfg.Paths)
	mind := brain.New(local, cloud, mem, cfg.Brain, cfg.Identity)

	guard := voice.NewMicGuard()
	var speaker voice.Speaker = voice.NoopSpeaker{}
	var transcriber voice.Transcriber = voice.NoopTranscriber{}
	if flagVoice {
		speaker = voice.ExecSpeaker{}
		transcriber = voice.NewExecTranscriber()
	}
	mouth := voice.NewMouth(speaker)

	var orch *assistant.Orchestrator
	ear := voice.NewEar(guard, transcriber, []string{strings.ToLower(cfg.Identity.BotName)}, func(text string) {
		orch.ProcessText(ctx, text)
	})
	orch = assistant.New(rt, mind, engine, eventBus, mouth, ear, ws.Notify, cfg.Identity, stop)
	orch.BindBus(ctx)

	startWatchers(ctx, cfg, eventBus, auto)
	go ws.RunHub(ctx)
	if flagVoice {
		go ear.Listen(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Sayra " + cfg.App.Version,
		ServerHeader: "Hidden",
	})
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.App.CorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	presence := newPresence(cfg, eventBus)
	go presence.Run(ctx)

	rest.NewApp(orch, vitals{pool: pool, mem: mem, presence: presence, version: cfg.App.Version}, cfg.App.Version).RegisterRoutes(app)
	ws.RegisterRoutes(app, orch)

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			logrus.Errorf("REST server stopped: %v", err)
			stop()
		}
	}()
	logrus.Infof("Sayra online at :%s", cfg.App.Port)
	ws.Notify(ws.CodeSystemStatus, "online", nil)

	<-ctx.Done()
	logrus.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logrus.Errorf("Server shutdown: %v", err)
	}
}

func newPresence(cfg *config.Config, b *bus.EventBus) *watchers.PresenceMonitor {
	return watchers.NewPresenceMonitor(
		activitySensor{},
		b,
		time.Duration(cfg.Watchers.PresenceIntervalSec)*time.Second,
		cfg.Watchers.PresenceMissLimit,
		cfg.Watchers.SentryEnabled,
	)
}

func startWatchers(ctx context.Context, cfg *config.Config, b *bus.EventBus, auto desktop.Automator) {
	retina := watchers.NewRetinaGuard(b, time.Duration(cfg.Watchers.RetinaIntervalMin)*time.Minute)
	go retina.Run(ctx)

	circadian := watchers.NewCircadianEnforcer(b, auto,
		cfg.Watchers.BedtimeWarning, cfg.Watchers.Bedtime,
		cfg.Watchers.ForcedLock,
		time.Duration(cfg.Watchers.BedtimeGraceSec)*time.Second)
	go circadian.Run(ctx)

	feeder := watchers.NewFeeder(b, cfg.Watchers.MealTimes,
		time.Duration(cfg.Watchers.WaterIntervalMin)*time.Minute)
	go feeder.Run(ctx)

	responder := watchers.NewLockResponder(auto, time.Duration(cfg.Watchers.AwayLockDelaySec)*time.Second)
	responder.Bind(b)
}
