package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/gridia/internal/config"
	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/datadir"
	"chosenoffset.com/gridia/internal/game"
	"chosenoffset.com/gridia/internal/inventory"
	"chosenoffset.com/gridia/internal/logger"
	"chosenoffset.com/gridia/internal/network"
	ebitenrender "chosenoffset.com/gridia/internal/render/ebiten"
)

const dialTimeout = 5 * time.Second

// handlerRef lets the connection start before the game exists. Queued
// messages only reach the handler when the game drains them.
type handlerRef struct {
	network.Handler
}

func main() {
	configPath := flag.String("config", "gridia.json", "path to the client config file")
	serverURL := flag.String("server", "", "websocket URL of the game server (overrides config)")
	dataPath := flag.String("data", "data", "directory holding action and item files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	catalog := loadData(*dataPath, cfg, log)

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	queue := network.NewQueue()
	handler := &handlerRef{}

	var server game.Server
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	client, err := network.Dial(ctx, cfg.ServerURL, queue, handler, log)
	cancel()
	if err != nil {
		log.WithError(err).Warn("Server unreachable, playing offline")
		server = network.Offline{Log: log}
	} else {
		defer client.Close()
		server = client
	}

	g, err := game.New(game.Options{
		Config:   cfg,
		Server:   server,
		Input:    inputMgr,
		Renderer: renderer,
		Queue:    queue,
		Catalog:  catalog,
		Log:      log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create game")
	}
	handler.Handler = g
	if client != nil {
		g.WatchConnection(client.Done())
	}

	if client == nil {
		// Without a server nobody assigns a focus, so walk a local stand-in.
		center := cfg.World.Size / 2
		g.AddCreature(1, "You", 0, geom.Coord{X: center, Y: center})
		g.SetFocus(1)
	}

	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle("Gridia")
	engine.SetWindowResizable(true)

	log.Info("Starting game...")
	if err := engine.RunGame(game.NewManager(g, time.Now)); err != nil {
		log.WithError(err).Error("Game exited with error")
		os.Exit(1)
	}
}

// loadData layers the data directory's actions under the configured ones
// and returns its item catalog. A missing directory is not an error.
func loadData(dir string, cfg *config.Config, log logrus.FieldLogger) *inventory.Catalog {
	bundle, err := datadir.Scan(dir)
	if err != nil {
		log.WithError(err).Debug("No data directory")
		return nil
	}

	defs, err := bundle.Actions()
	if err != nil {
		log.WithError(err).Warn("Ignoring action files")
	} else {
		cfg.Actions = append(defs, cfg.Actions...)
	}

	catalog, err := bundle.Catalog()
	if err != nil {
		log.WithError(err).Warn("Item catalog unavailable, using generic names")
		return nil
	}
	log.WithFields(logrus.Fields{
		"dir":     dir,
		"actions": len(defs),
	}).Info("Data loaded")
	return catalog
}
