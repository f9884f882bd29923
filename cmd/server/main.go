package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickhacker/internal/api"
	"quickhacker/internal/api/middleware"
	"quickhacker/internal/app/service"
	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/repository"
	"quickhacker/internal/platform/cache"
	"quickhacker/internal/platform/config"
	"quickhacker/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT(cfg.JWTKey, cfg.JWTExp)
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect(cfg.DBConnStr)
	defer database.Close()
	if cfg.DBAutoMigrate {
		if err := database.EnsureSchema(context.Background(), database.DB); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		fmt.Println("Database schema applied.")
	}

	// 4. Initialize Redis (optional, backs rate limiting)
	cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer cache.CloseRedis()
	var authLimiter middleware.Limiter
	if cache.RDB != nil {
		authLimiter = cache.NewFixedWindowLimiter(cache.RDB, cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow)
	}

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	teamRepo := repository.NewPgTeamRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	reviewRepo := repository.NewPgReviewRepository(database.DB)
	tx := repository.NewPgTransactor(database.DB)

	// 6. Initialize Services
	problemService := service.NewProblemService(problemRepo)
	var fetcher service.ProfileFetcher
	if cfg.GitHubEnabled() {
		fetcher = service.NewGitHubFetcher(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.AppURL+"/api/auth/github/callback")
	} else {
		log.Println("WARN: GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set, GitHub login disabled")
	}
	services := api.Services{
		Auth:         service.NewAuthService(userRepo),
		OAuth:        service.NewOAuthService(userRepo, fetcher),
		Users:        service.NewUserService(userRepo),
		Teams:        service.NewTeamService(teamRepo, userRepo, problemRepo, submissionRepo, reviewRepo, tx, cfg.TeamPasswordLength),
		Registration: service.NewRegistrationService(teamRepo, userRepo, problemRepo, tx, cfg.LeaderPasswordLength, cfg.MemberPasswordLength),
		Problems:     problemService,
		Submissions:  service.NewSubmissionService(submissionRepo, teamRepo, problemRepo, reviewRepo, tx),
		Reviews:      service.NewReviewService(reviewRepo, submissionRepo, tx),
	}

	// 7. Seed accounts and problems
	if cfg.SeedFile != "" || cfg.AdminEmail != "" {
		seeder := service.NewSeeder(userRepo, problemService)
		if _, err := seeder.SeedFromPath(context.Background(), cfg.SeedFile, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("ERROR: seeding failed: %v", err)
		}
	}

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(services, api.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AppURL:         cfg.AppURL,
		TokenTTL:       cfg.JWTExp,
		AuthLimiter:    authLimiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
