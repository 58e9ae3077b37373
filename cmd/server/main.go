package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"zombie-arena/internal/api"
	"zombie-arena/internal/config"
	"zombie-arena/internal/room"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🧟 ================================")
	log.Println("🧟  ZOMBIE ARENA - GO SERVER")
	log.Println("🧟 ================================")

	appConfig := config.Load()
	serverCfg := appConfig.Server
	simCfg := appConfig.Simulation

	presets, err := config.LoadPresets(appConfig.Match.PresetsPath)
	if err != nil {
		log.Fatalf("❌ Presets: %v", err)
	}
	log.Printf("📋 %d match presets: %v", len(presets), presets.Names())

	limits := appConfig.Limits
	log.Printf("🎮 Config: %d TPS, %d rooms max, %d players per room", simCfg.TickRate, serverCfg.MaxRooms, serverCfg.MaxPlayersPerRoom)
	log.Printf("🛡️ Resource limits: %d projectiles, %d particles, %d mines per room",
		limits.MaxProjectiles, limits.MaxParticles, limits.MaxMines)

	// Event log
	events := room.NewEventLog(appConfig.EventLog)
	if err := events.Start(); err != nil {
		log.Fatalf("❌ Event log: %v", err)
	}
	if appConfig.EventLog.Path != "" {
		log.Printf("📝 Event log: %s", appConfig.EventLog.Path)
	}

	// Rooms
	manager := room.NewManager(serverCfg.MaxRooms, room.Config{
		TickRate:   simCfg.TickRate,
		MaxPlayers: serverCfg.MaxPlayersPerRoom,
		Sim:        simCfg.SimConfig(limits),
	}, events)
	manager.SetOnTick(api.ObserveTick)

	if id := appConfig.Match.DefaultRoom; id != "" {
		if _, err := manager.Create(id, appConfig.Match.Settings); err != nil {
			log.Fatalf("❌ Default room %q: %v", id, err)
		}
	}

	// Debug server
	debugServer, err := api.StartDebugServer(appConfig.Debug)
	if err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	server := api.NewServer(appConfig, manager, presets, events)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(":" + strconv.Itoa(serverCfg.Port))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			log.Printf("❌ %v", err)
		}
	}

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ API shutdown: %v", err)
	}
	if debugServer != nil {
		debugServer.Shutdown(ctx)
	}
	manager.CloseAll()
	events.Stop()
	log.Println("👋 Goodbye!")
}
