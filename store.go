package brandkit

import (
	"fmt"

	"github.com/eringen/brandkit/record"
	"github.com/eringen/brandkit/record/s3store"
)

// OpenStore opens the record store named by cfg.Backend.
func OpenStore(cfg Config) (record.Store, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		path := cfg.DatabasePath
		if path == "" {
			path = "data/brandkit.db"
		}
		s, err := record.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return record.NewMemoryStore(), nil
	case BackendS3:
		s, err := s3store.New(cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
