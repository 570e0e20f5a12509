package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/hitmarkers/config"
	"github.com/automoto/hitmarkers/server/core"
	"github.com/automoto/hitmarkers/shared/protocol"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	port := flag.Uint("port", 0, "Server port (overrides config)")
	tickRate := flag.Int("tickrate", 0, "Server tick rate in updates per second (overrides config)")
	name := flag.String("name", "", "Server display name (overrides config)")
	arenaDir := flag.String("arenas", "", "Assets directory containing arenas/*.tmx (overrides config)")
	arena := flag.String("arena", "", "Arena to load (overrides config)")
	prefsApp := flag.String("prefs", "", "gdata app name for saved preferences (overrides config)")
	flag.Parse()

	if *configPath != "" {
		file, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		file.Apply()
	}

	if *port != 0 {
		config.Server.Port = *port
	}
	if *tickRate > 0 {
		config.Server.TickRate = *tickRate
	}
	if *name != "" {
		config.Server.Name = *name
	}
	if *arenaDir != "" {
		config.Server.ArenaDir = *arenaDir
	}
	if *arena != "" {
		config.Server.Arena = *arena
	}
	if *prefsApp != "" {
		config.Server.PrefsApp = *prefsApp
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	server, err := core.NewServer(core.DefaultOptions())
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting %q on port %d (tick rate: %d/s, version: %q)",
		config.Server.Name, config.Server.Port, config.Server.TickRate, config.Server.Version)
	if err := server.Start(config.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
