package app

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
}

// Ensure Application implements all interfaces
var (
	_ DBProvider     = (*Application)(nil)
	_ ConfigProvider = (*Application)(nil)
	_ AppContext     = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// Init sets up logging, metrics and the database, then makes sure the
// bootstrap admin exists.
func (a *Application) Init() error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	zap.ReplaceGlobals(logger)

	if err = metrics.InitMetrics(cfg.GetDataDir()); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	a.gormDB, err = getDatabase(cfg.Database, cfg.GetDataDir())
	if err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		return errors.Wrap(err, "migrate database")
	}
	return a.checkSuper()
}

// newLogger logs to stdout, plus a rotated JSON file under the log dir when enabled.
func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if !cfg.Logger.FileEnable {
		return zapConfig.Build(zap.AddCaller())
	}

	filename := cfg.GetLogFile()
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}
	lumberJackLogger := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   false,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lumberJackLogger),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller()), nil
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			if err2, ok := err1.(error); ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// ResetDB drops and recreates every table, then seeds the bootstrap admin again.
func (a *Application) ResetDB() error {
	a.DropAll()
	if err := a.MigrateDB(true); err != nil {
		return errors.Wrap(err, "migrate database")
	}
	return a.checkSuper()
}

// Release releases application resources
func (a *Application) Release() {
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
