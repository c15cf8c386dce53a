// Package bootstrap wires the process-level dependencies the server needs.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"forum/internal/cache"
	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedSections creates the default categories when none exist.
	SeedSections bool
}

// InitRuntime connects to the database and Redis. A missing Redis is not an
// error: the client is nil and the server runs without cache or revocation.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development superuser: %w", err)
	}

	if opts.SeedSections {
		if err := seed.Sections(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed default sections: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevRootAdmin makes sure a superuser with the configured username
// exists in development. It never touches other environments.
func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "forum_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@forum.local"
	}
	if cfg.DevRootPassword == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("username = ?", username).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username:    username,
				Email:       email,
				Password:    string(hashed),
				IsSuperuser: true,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		case !root.IsSuperuser:
			return tx.Model(&models.User{}).Where("id = ?", root.ID).Update("is_superuser", true).Error
		}
		return nil
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development superuser ensured", slog.String("username", username))
	return nil
}
