package app

import (
	"github.com/talkincode/storefront/config"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// AppContext combines the provider interfaces with the lifecycle methods
// used by cmd/storefront.
type AppContext interface {
	DBProvider
	ConfigProvider

	MigrateDB(track bool) error
	DropAll()
	ResetDB() error
	Release()
}
