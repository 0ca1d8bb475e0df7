package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dymm/internal/auth"
	"dymm/internal/config"
	"dymm/internal/db"
	httpx "dymm/internal/http"
	"dymm/internal/jobs"
	"dymm/internal/logging"
	"dymm/internal/mail"
	"dymm/internal/storage"
)

func main() {
	cfg, _ := config.Load()
	log := logging.Init(cfg.Log)

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	defer sqlDB.Close()

	gdb, err := db.Connect(sqlDB, log)
	if err != nil {
		log.WithError(err).Fatal("gorm init failed")
	}
	if err := db.Setup(gdb, sqlDB); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	rdb, err := mail.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		log.WithError(err).Fatal("redis unavailable")
	}
	defer rdb.Close()

	jwtSvc := auth.NewJWT(cfg.JWTSecret, cfg.MailSecret)

	deps := httpx.Deps{
		DB:    gdb,
		JWT:   jwtSvc,
		Codes: &mail.RedisCodes{Client: rdb, TTL: mail.CodeTTL},
		Log:   log,
	}
	photos, err := storage.New(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.PublicURL)
	if err != nil {
		log.WithError(err).Fatal("storage init failed")
	}
	if photos != nil {
		deps.Photos = photos
	} else {
		log.Warn("S3 not configured, photo upload disabled")
	}
	r := httpx.NewRouter(cfg, deps)

	// mail worker
	var sender mail.Sender = mail.LogSender{Log: log}
	if cfg.SMTP.Enabled() {
		sender = mail.NewSMTPSender(cfg.SMTP)
	}
	worker := &jobs.Worker{ID: "mail-1", Queue: &jobs.Repo{DB: gdb}, Log: log}
	(&mail.Dispatcher{Sender: sender, JWT: jwtSvc, PublicURL: cfg.PublicURL}).Register(worker)

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}
