package orderdesk

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"orderdesk/common"
	"orderdesk/domain"
	"orderdesk/srv"
	"orderdesk/srv/sqlite"
)

// GetService opens the SQLite-backed storage under the data home, brings the
// schema up to date and seeds configured user accounts.
func GetService() (srv.Storage, error) {
	dataHome, err := common.GetOrderdeskDataHome()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data home: %w", err)
	}

	db, err := sqlite.NewClient(filepath.Join(dataHome, "orderdesk.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
	}
	if err := sqlite.Migrate(db, "orderdesk"); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	storage := sqlite.NewStorage(db)
	log.Info().Str("dataHome", dataHome).Msg("Using SQLite storage")

	if err := seedUsers(context.Background(), storage); err != nil {
		return nil, err
	}

	return storage, nil
}

// seedUsers creates the accounts listed in the local config. Existing
// usernames are left untouched so a config edit never overwrites a password
// changed through the API.
func seedUsers(ctx context.Context, storage srv.Storage) error {
	config, err := common.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("failed to load local config: %w", err)
	}

	for _, seed := range config.SeedUsers {
		_, err := storage.GetUserByUsername(ctx, seed.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, srv.ErrNotFound) {
			return fmt.Errorf("failed to look up seed user %q: %w", seed.Username, err)
		}

		role := domain.UserRoleAdmin
		if domain.IsValidUserRole(seed.Role) {
			role = domain.UserRole(seed.Role)
		}
		user := domain.User{
			Id:       domain.NewId("user"),
			Username: seed.Username,
			Password: seed.Password,
			Role:     role,
		}
		if err := storage.PersistUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %q: %w", seed.Username, err)
		}
		log.Info().Str("username", seed.Username).Msg("Seeded user account")
	}

	return nil
}
