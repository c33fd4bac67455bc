package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/socialcal/backend/internal/auth"
	"github.com/socialcal/backend/internal/avatars"
	"github.com/socialcal/backend/internal/config"
	"github.com/socialcal/backend/internal/db"
	"github.com/socialcal/backend/internal/friends"
	"github.com/socialcal/backend/internal/handlers"
	"github.com/socialcal/backend/internal/middleware"
	"github.com/socialcal/backend/internal/repositories"
	"github.com/socialcal/backend/internal/schedule"
	"github.com/socialcal/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background workers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, func(context.Context) error, error) {
	profiles := repositories.NewPostgresProfileRepository(pool)
	friendships := repositories.NewPostgresFriendshipRepository(pool)
	availability := repositories.NewPostgresAvailabilityRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	sessions := auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore)
	sessions.Subscribe(func(event auth.SessionEvent) {
		slog.Debug("session changed", "type", string(event.Type), "userId", event.UserID)
	})

	resolver := schedule.NewFriendGraphResolver(friendships)
	directory := schedule.NewProfileDirectory(profiles, cfg.DirectoryTTL)

	deps := handlers.Dependencies{
		Profiles:     profiles,
		Sessions:     sessions,
		Friends:      friends.NewService(profiles, friendships),
		Availability: availability,
		Calendar:     schedule.NewMergeEngine(resolver, availability, directory),
		Suggestions:  schedule.NewRankingEngine(resolver, availability, directory),
		AuthLimiter:  middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}

	cleanup := func(context.Context) error { return nil }

	if cfg.ObjectStore.Bucket != "" {
		store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("configure avatar storage: %w", err)
		}

		ingestor := avatars.NewIngestor(store, profiles, avatars.IngestorConfig{
			Workers:  cfg.AvatarWorkers,
			MaxBytes: cfg.AvatarMaxBytes,
		}, slog.Default())

		deps.Avatars = ingestor
		cleanup = ingestor.Shutdown
	}

	return deps, cleanup, nil
}
