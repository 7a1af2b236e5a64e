package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/gommon/bytes"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g. STOREFRONT_WEB_SECRET.
const EnvPrefix = "STOREFRONT"

// SysConfig system settings
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig http server settings
type WebConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	Secret        string        `yaml:"secret"`
	TokenTTL      time.Duration `yaml:"token_ttl" split_words:"true"`
	UploadDir     string        `yaml:"upload_dir" split_words:"true"`
	MaxUploadSize string        `yaml:"max_upload_size" split_words:"true"`
	CorsOrigins   []string      `yaml:"cors_origins" split_words:"true"`
}

// DBConfig database settings
type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn" split_words:"true"`
	IdleConn int    `yaml:"idle_conn" split_words:"true"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger settings
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable" split_words:"true"`
	Filename   string `yaml:"filename"`
}

// AdminConfig bootstrap account and credential policy
type AdminConfig struct {
	Username         string `yaml:"username"`
	Email            string `yaml:"email"`
	Password         string `yaml:"password"`
	BcryptCost       int    `yaml:"bcrypt_cost" split_words:"true"`
	OpenRegistration bool   `yaml:"open_registration" split_words:"true"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system"`
	Web      WebConfig   `yaml:"web"`
	Database DBConfig    `yaml:"database"`
	Logger   LogConfig   `yaml:"logger"`
	Admin    AdminConfig `yaml:"admin"`
}

// GetUploadDir returns the absolute blob directory, relative paths resolve under the workdir.
func (c *AppConfig) GetUploadDir() string {
	if filepath.IsAbs(c.Web.UploadDir) {
		return c.Web.UploadDir
	}
	return filepath.Join(c.System.Workdir, c.Web.UploadDir)
}

// GetDataDir holds the sqlite database and the metrics store.
func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

// GetLogFile returns the rotated log file, relative names resolve under the log dir.
func (c *AppConfig) GetLogFile() string {
	if filepath.IsAbs(c.Logger.Filename) {
		return c.Logger.Filename
	}
	return filepath.Join(c.GetLogDir(), c.Logger.Filename)
}

// Validate checks settings that have no usable default.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Web.Secret) == "" {
		return errors.New("web.secret is required to sign admin tokens")
	}
	switch c.Database.Type {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if _, err := bytes.Parse(c.Web.MaxUploadSize); err != nil {
		return errors.Wrapf(err, "invalid web.max_upload_size %q", c.Web.MaxUploadSize)
	}
	if c.Web.TokenTTL <= 0 {
		return errors.New("web.token_ttl must be positive")
	}
	return nil
}

// DefaultAppConfig returns the built-in settings. The signing secret is left
// empty on purpose and must come from the config file or the environment.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "Storefront",
			Location: "Asia/Shanghai",
			Workdir:  "/var/storefront",
			Debug:    true,
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          5000,
			TokenTTL:      time.Hour,
			UploadDir:     "uploads",
			MaxUploadSize: "10M",
			CorsOrigins:   []string{"*"},
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "store",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  100,
			IdleConn: 10,
			Debug:    false,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "storefront.log",
		},
		Admin: AdminConfig{
			Username:   "admin",
			Email:      "N/A",
			Password:   "storefront",
			BcryptCost: 10,
		},
	}
}

// LoadConfig builds the application config: defaults, then the yaml file
// (when cfgfile is not empty), then .env, then STOREFRONT_* variables.
func LoadConfig(cfgfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if cfgfile != "" {
		data, err := os.ReadFile(cfgfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgfile)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfgfile)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "apply environment overrides")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
