package seed

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/config"
)

// AdminSeeder creates an admin account unless one with the email exists
type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, email, password, name, department string) (created bool, err error)
}

// CreateDefaultAdmin makes sure the configured bootstrap admin exists so a
// fresh install can be logged into. It does nothing when no admin is
// configured.
func CreateDefaultAdmin(ctx context.Context, admins AdminSeeder, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Admin.Email == "" {
		lgr.Info().Msg("No default admin configured, skipping creation")
		return nil
	}

	created, err := admins.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name, cfg.Admin.Department)
	if err != nil {
		lgr.Error().Err(err).Str("email", cfg.Admin.Email).Msg("Error creating default admin user")
		return err
	}

	if created {
		lgr.Info().Str("email", cfg.Admin.Email).Msg("Default admin user created successfully")
	} else {
		lgr.Info().Str("email", cfg.Admin.Email).Msg("Admin user already exists, skipping creation")
	}
	return nil
}
