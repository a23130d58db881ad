package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/config"
	"github.com/aristath/stockboard/internal/database"
	"github.com/aristath/stockboard/internal/storage"
)

// InitializeDatabases opens the state database, applies its schema and
// builds the storage repository over it.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	codec, err := storage.CodecByName(cfg.StorageCodec)
	if err != nil {
		return nil, err
	}

	// state.db - persisted client-state documents (fsync on every commit)
	stateDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileDurable,
		Name:    "state",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state database: %w", err)
	}

	if err := stateDB.Migrate(); err != nil {
		stateDB.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	log.Info().Str("path", stateDB.Path()).Str("codec", codec.Name()).Msg("State database initialized")

	return &Container{
		Config:  cfg,
		StateDB: stateDB,
		Storage: storage.NewRepository(stateDB.Conn(), codec, log),
	}, nil
}
