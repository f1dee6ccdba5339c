package main // Entry point package

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/rs/zerolog"       // structured logging

	"github.com/FaridHajiyevAZ/KomfyAz/internal/config"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/database"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/handler"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/jobs"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/notification"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/otp"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/queue"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/router"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/storage"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "komfyaz").Logger()
	if cfg.Env == "dev" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	// Redis backs the OTP store, reset tokens, rate limiting and the
	// catalog response cache.  Auth cannot work without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal().Msg("redis connection failed")
	}

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("upload dir unavailable")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	catalog := repository.NewCatalogRepo(db)
	regs := repository.NewRegistrationRepo(db)
	photos := repository.NewPhotoRepo(db)
	warrs := repository.NewWarrantyRepo(db)
	notes := repository.NewNoteRepo(db)
	tickets := repository.NewTicketRepo(db)
	stats := repository.NewStatsRepo(db)

	kv := otp.NewRedisKV(rdb)
	otpStore := otp.NewStore(kv, time.Duration(cfg.OTPTTLSecs)*time.Second, cfg.OTPMaxAttempts)
	resets := otp.NewResetStore(kv, time.Duration(cfg.ResetTTLSecs)*time.Second)

	mailer := notification.NewMailer(notification.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}, log)
	sms := &notification.LogSms{Log: log}

	authH := handler.NewAuthHandler(cfg, users, tokens, otpStore, resets, mailer, sms, log)
	catalogH := handler.NewCatalogHandler(catalog)
	productH := handler.NewProductHandler(regs, photos, warrs, catalog, files, log)
	warrantyH := handler.NewWarrantyHandler(regs, warrs)
	supportH := handler.NewSupportHandler(tickets, regs, files, log)
	profileH := handler.NewProfileHandler(users, regs, tickets)
	adminH := handler.NewAdminHandler(users, regs, photos, warrs, notes, tickets, stats, catalog, mailer, cfg.FrontendURL, log)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, catalogH, rdb)
	router.RegisterAuth(e, authH, rdb)
	router.RegisterCustomer(e, productH, warrantyH, supportH, profileH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Background workers share the process lifetime.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go jobs.StartWarrantyExpirySweep(ctx, warrs, time.Duration(cfg.SweepHours)*time.Hour, log)
	go func() {
		if err := queue.StartWarrantyConsumer(); err != nil {
			log.Error().Err(err).Msg("warranty consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
