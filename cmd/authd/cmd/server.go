package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/wordtrove/authd/account"
	"github.com/wordtrove/authd/api"
	"github.com/wordtrove/authd/mfa"
	"github.com/wordtrove/authd/session"
	"github.com/wordtrove/authd/storage"
	bboltstorage "github.com/wordtrove/authd/storage/bbolt"
	memorystorage "github.com/wordtrove/authd/storage/memory"
	pgstorage "github.com/wordtrove/authd/storage/postgres"
)

var (
	port          int
	dataDir       string
	backend       string
	postgresDSN   string
	redisAddr     string
	accountsFile  string
	sessionTTL    time.Duration
	mfaTTL        time.Duration
	sweepInterval time.Duration
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the authentication service server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Values from a local .env file act as environment defaults.
		_ = godotenv.Load()
		if postgresDSN == "" {
			postgresDSN = os.Getenv("AUTHD_POSTGRES_DSN")
		}
		if redisAddr == "" {
			redisAddr = os.Getenv("AUTHD_REDIS_ADDR")
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		repo, closeRepo, err := openRepository()
		if err != nil {
			return err
		}
		defer closeRepo()

		dir, err := openDirectory()
		if err != nil {
			return err
		}

		challengeStore, closeChallenges, err := openChallengeStore()
		if err != nil {
			return err
		}
		defer closeChallenges()

		// Development code delivery. Codes go to the process log only,
		// never through the audit trail.
		sender := mfa.SenderFunc(func(_ context.Context, userID, code string) error {
			logger.Info("mfa code issued", "user_id", userID, "code", code)
			return nil
		})

		sessions := session.NewStore(repo, dir, session.WithTTL(sessionTTL))
		challenges := mfa.NewManager(challengeStore, sender, mfa.WithTTL(mfaTTL))
		a := api.New(dir, sessions, challenges, api.WithLogger(logger))

		sweeper := session.NewSweeper(sessions, sweepInterval, logger)
		sweeper.Start()
		defer sweeper.Stop()

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		logger.Info("server started", "version", Version, "port", port, "backend", backend, "data_dir", dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func openRepository() (storage.Repository, func(), error) {
	switch backend {
	case "memory":
		return memorystorage.NewRepository(), func() {}, nil
	case "bbolt":
		repo, err := bboltstorage.NewRepositoryFromFile(dataDir+"/sessions.db", nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
		}
		return repo, func() { repo.Close() }, nil
	case "postgres":
		if postgresDSN == "" {
			return nil, nil, errors.New("postgres backend requires --postgres-dsn or AUTHD_POSTGRES_DSN")
		}
		repo, err := pgstorage.NewRepositoryFromDSN(context.Background(), postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func openDirectory() (account.Directory, error) {
	if accountsFile == "" {
		return account.NewMemoryDirectory(), nil
	}
	dir, err := account.NewMemoryDirectoryFromFile(accountsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts file: %w", err)
	}
	return dir, nil
}

func openChallengeStore() (mfa.ChallengeStore, func(), error) {
	if redisAddr == "" {
		return mfa.NewMemoryChallengeStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return mfa.NewRedisChallengeStore(client), func() { client.Close() }, nil
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
	serverCmd.Flags().StringVar(&backend, "backend", "bbolt", "Session storage backend (memory, bbolt, postgres)")
	serverCmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "PostgreSQL connection string for the postgres backend")
	serverCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for MFA challenge storage (in-memory when empty)")
	serverCmd.Flags().StringVar(&accountsFile, "accounts-file", "", "JSON file of user accounts to serve")
	serverCmd.Flags().DurationVar(&sessionTTL, "session-ttl", session.DefaultTTL, "Session lifetime")
	serverCmd.Flags().DurationVar(&mfaTTL, "mfa-ttl", mfa.DefaultTTL, "MFA challenge lifetime")
	serverCmd.Flags().DurationVar(&sweepInterval, "sweep-interval", session.DefaultSweepInterval, "Interval between expired session sweeps")
}
