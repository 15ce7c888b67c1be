package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/Simhateja17/whatsapp/config"
	"github.com/Simhateja17/whatsapp/controllers"
	"github.com/Simhateja17/whatsapp/models"
	"github.com/Simhateja17/whatsapp/routes"
	"github.com/Simhateja17/whatsapp/services"
	"github.com/Simhateja17/whatsapp/ws"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()
	db := config.InitDB(cfg)
	if err := models.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis init failed")
	}

	// Redis backs the OTP store, presence last-seen, and cross-instance
	// fan-out. Without it everything degrades to single-instance in-process
	// equivalents.
	var (
		otpStore services.OTPStore = services.NewMemoryOTPStore()
		presence ws.PresenceStore  = ws.NoopPresenceStore{}
		bus      ws.Publisher
	)
	if rdb != nil {
		otpStore = services.NewRedisOTPStore(rdb)
		presence = ws.NewRedisPresenceStore(rdb)
		bus = ws.NewRedisBus(rdb)
	}

	hub := ws.NewHub(ws.NewGormMessageStore(db), presence, bus, logger)
	go hub.Run()
	if rdb != nil {
		go hub.Subscribe(context.Background(), rdb)
	}

	otps := services.NewOTPService(otpStore, cfg.OTPTTL)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	auth := &controllers.AuthController{DB: db, OTP: otps, Tokens: tokens}
	users := &controllers.UserController{DB: db}
	conversations := &controllers.ConversationController{DB: db}

	r := routes.Register(cfg, auth, users, conversations, hub, tokens, db)

	logger.Info().Str("port", cfg.Port).Msg("server listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server failed to start")
	}
}
