package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrcore/internal/auth"
	"hrcore/internal/config"
	"hrcore/internal/db"
	"hrcore/internal/employees"
	"hrcore/internal/httpserver"
	"hrcore/internal/logging"
)

func main() {
	ctx := context.Background()
	logger := logging.New()

	cfg := config.Load()

	dbConn, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	if err := db.RunMigrations(ctx, dbConn); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	userStore := auth.NewStore(dbConn)
	authSvc := auth.NewService(userStore, tokens, cfg.BcryptCost)
	if err := authSvc.SeedFromFile(ctx, cfg.UsersPath); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	employeeStore := employees.NewStore(dbConn)

	handler := httpserver.NewRouter(logger, tokens, authSvc, employeeStore)
	server := httpserver.New(cfg.HTTPAddr, handler, logger)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
