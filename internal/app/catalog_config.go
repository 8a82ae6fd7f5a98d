package app

import (
	"github.com/charlesng35/otpdash/internal/catalog"
	"github.com/charlesng35/otpdash/internal/database"
)

// ClientConfig converts CatalogConfig into catalog client parameters.
func (c CatalogConfig) ClientConfig() catalog.ClientConfig {
	return catalog.ClientConfig{
		BaseURL: c.BaseURL,
		Limit:   c.Limit,
		Timeout: c.Timeout,
	}
}

// BuildSource constructs the catalog client, wrapped in the snapshot cache when enabled.
func (c CatalogConfig) BuildSource() (catalog.Source, error) {
	client, err := catalog.NewClient(c.ClientConfig())
	if err != nil {
		return nil, err
	}
	return catalog.WithSnapshotCache(client, c.CacheSize, c.CacheTTL), nil
}

// SnapshotStore builds the per-load snapshot store for the dashboard.
func (c CatalogConfig) SnapshotStore() *catalog.SnapshotStore {
	return catalog.NewSnapshotStore(c.HoldSlots, c.HoldTTL)
}

// ConnectionConfig converts DatabaseConfig into the database package representation.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	return database.Config{
		Driver:   c.Driver,
		Path:     c.Path,
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		Name:     c.Name,
		User:     c.User,
		Password: c.Password,
		Options:  c.Options,
		Pool: database.PoolConfig{
			MaxOpenConns:    c.Pool.MaxOpenConns,
			MaxIdleConns:    c.Pool.MaxIdleConns,
			ConnMaxLifetime: c.Pool.ConnMaxLifetime,
		},
	}
}
