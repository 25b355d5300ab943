package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbeisheim/quadchess-backend/internal/config"
	"github.com/benbeisheim/quadchess-backend/internal/controller"
	"github.com/benbeisheim/quadchess-backend/internal/middleware"
	"github.com/benbeisheim/quadchess-backend/internal/service"
	"github.com/benbeisheim/quadchess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ConfigureLogger(log.StandardLogger()); err != nil {
		log.Fatalf("logger: %v", err)
	}

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Origins(), ","),
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		ExposeHeaders:    middleware.ClientIDHeader,
		AllowCredentials: true,
	}))
	app.Use(middleware.EnsureClientID())
	app.Use(middleware.RequestLogger())

	// Initialize services
	gameManager := service.NewGameManager()
	gameService := service.NewGameService(gameManager, store, cfg.Rules())

	// Initialize controllers
	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	// WebSocket routes
	app.Get("/ws/game/:gameId",
		middleware.WebSocketUpgrade(gameService.GameExists),
		websocket.New(wsController.HandleConnection, websocket.Config{
			Origins:         cfg.Origins(),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}),
	)

	// REST routes
	gameController.Register(app.Group("/api"))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	log.WithFields(log.Fields{
		"addr":                cfg.Addr,
		"dataDir":             cfg.DataDir,
		"cornerSize":          cfg.CornerSize,
		"checkmateEndsGame":   cfg.CheckmateEndsGame,
		"stalemateEliminates": cfg.StalemateEliminates,
	}).Info("quadchess server listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
