package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"clockwork/internal/api"
	"clockwork/internal/assets"
	"clockwork/internal/config"
	"clockwork/internal/engine"
	"clockwork/internal/event"
	"clockwork/internal/inputadapter"
	"clockwork/internal/ipc"
	"clockwork/internal/recorder"
	"clockwork/internal/replay"
)

// passthroughGame is the default Setup hook: the core never ships
// concrete game content, so a bare engine with no entities pre-wired is
// the honest default for the inspector binary. Real deployments supply
// their own engine.Game.
type passthroughGame struct{}

func (passthroughGame) Setup(eng *engine.Engine, cfg engine.GameConfig) error { return nil }

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("inspector: no .env file found, using environment variables only")
	} else {
		log.Println("inspector: loaded environment from .env")
	}

	appCfg := config.Load()

	log.Println("inspector: clockwork simulation engine")
	log.Printf("inspector: sim seed=%q tick-rate=%d input-capacity=%d",
		appCfg.Sim.PRNGSeed, appCfg.Sim.TickRate, appCfg.Sim.InputCapacity)

	assetCache := assets.NewCache(200)
	assetLoader := assets.NewLoader(assetCache)

	eng := engine.New(passthroughGame{}, assetLoader)
	if err := eng.Reset(engine.GameConfig{PRNGSeed: appCfg.Sim.PRNGSeed}); err != nil {
		log.Fatalf("inspector: initial reset failed: %v", err)
	}

	live := event.NewLiveInput(appCfg.Sim.InputCapacity)
	eng.GetEventManager().SetSource(live)

	input := inputadapter.New(live, inputadapter.Limits{
		EventsPerSecond: appCfg.InputLimits.EventsPerSecond,
		Burst:           appCfg.InputLimits.Burst,
	})

	rec := recorder.New()
	ctrl := replay.New(eng)

	publisher := ipc.NewPublisher(appCfg.Server.RecordingSocket)
	if err := publisher.Start(); err != nil {
		log.Printf("inspector: ipc publisher disabled: %v", err)
	} else {
		defer publisher.Stop()
	}

	debugCfg := api.DefaultObservabilityConfig()
	debugCfg.ListenAddr = "127.0.0.1:" + strconv.Itoa(appCfg.Server.MetricsPort)
	if os.Getenv("CLOCKWORK_DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("inspector: debug server disabled: %v", err)
		}
	}

	server := api.NewServer(eng, ctrl, rec, input, publisher)

	go func() {
		addr := ":" + strconv.Itoa(appCfg.Server.Port)
		log.Printf("inspector: api server on http://localhost%s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("inspector: api server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Println("inspector: ready, press Ctrl+C to stop")
	<-quit

	log.Println("inspector: shutting down")
	server.Stop()
	log.Println("inspector: goodbye")
}
