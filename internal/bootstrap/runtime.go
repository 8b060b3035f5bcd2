// Package bootstrap wires runtime dependencies before the server starts.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo content.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevStaffUser(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development staff user: %w", err)
	}

	if opts.SeedDemo {
		if err := seed.Demo(db, seed.Options{}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo content: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevStaffUser guarantees a moderation-capable account in development
// so comment approval can be exercised without manual DB edits.
func ensureDevStaffUser(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapStaff {
		return nil
	}

	username := strings.TrimSpace(cfg.DevStaffUsername)
	if username == "" {
		username = "inkwell_staff"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevStaffEmail))
	if email == "" {
		email = "staff@inkwell.local"
	}
	password := cfg.DevStaffPassword
	if password == "" {
		return fmt.Errorf("DEV_STAFF_PASSWORD must be set when DEV_BOOTSTRAP_STAFF is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash staff password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var staff models.User
		findErr := tx.Where("email = ?", email).First(&staff).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			staff = models.User{
				Username: username,
				Email:    email,
				Password: string(hashedPassword),
				IsStaff:  true,
			}
			return tx.Create(&staff).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&staff).Update("is_staff", true).Error
		}
	}); err != nil {
		return err
	}

	log.Printf("development staff user ensured (%s)", email)
	return nil
}
