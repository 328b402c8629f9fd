package ledger

import (
	"fmt"

	"github.com/the1andoni/repowatch/internal/config"
)

// NewStore returns the Store implementation matching cfg.Driver.
// The JSON file store is the default when driver is empty.
func NewStore(cfg config.LedgerConfig) (Store, error) {
	switch cfg.Driver {
	case "json", "":
		return NewFileStore(cfg.Dir)
	case "sqlite", "sqlite3":
		return NewSQLite(cfg.Path)
	case "mysql":
		return NewMySQL(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported ledger driver %q (supported: json, sqlite, mysql)", cfg.Driver)
	}
}
