package config

import (
	"os"
	"path"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid         string `yaml:"appid"`
	Location      string `yaml:"location"`
	Workdir       string `yaml:"workdir"`
	Debug         bool   `yaml:"debug"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	SeedDemo      bool   `yaml:"seed_demo"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Secret        string `yaml:"secret"`
	SessionMaxAge int    `yaml:"session_max_age"` // seconds
	SecureCookie  bool   `yaml:"secure_cookie"`
	StaticDir     string `yaml:"static_dir"`
	AdminDir      string `yaml:"admin_dir"` // served only behind the admin page gate
	Debug         bool   `yaml:"debug"` // surface raw storage errors to API callers
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// MailConfig outgoing mail used for contact notifications
type MailConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	From         string `yaml:"from"`
	AdminAddress string `yaml:"admin_address"`
	Workers      int    `yaml:"workers"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system"`
	Web      WebConfig  `yaml:"web"`
	Database DBConfig   `yaml:"database"`
	Logger   LogConfig  `yaml:"logger"`
	Mail     MailConfig `yaml:"mail"`
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
}

// DefaultAppConfig returns the built-in configuration used when no file is given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:         "StyleHub",
			Location:      "UTC",
			Workdir:       "/var/stylehub",
			AdminEmail:    "admin@stylehub.com",
			AdminPassword: "stylehub",
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			Secret:        "9b6de5cc-0731-4b7e-9f5a-stylehub-secret",
			SessionMaxAge: 86400,
			StaticDir:     "public",
			AdminDir:      "admin",
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "stylehub",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  50,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/stylehub/logs/stylehub.log",
		},
		Mail: MailConfig{
			Port:         587,
			From:         "noreply@stylehub.com",
			AdminAddress: "admin@stylehub.com",
			Workers:      4,
		},
	}
}

// LoadConfig reads the yaml file at cfile over the defaults, then applies
// STYLEHUB_* environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	}
	cfg.applyEnv()
	cfg.initDirs()
	return cfg
}

func (c *AppConfig) applyEnv() {
	setEnvValue("STYLEHUB_WORKDIR", &c.System.Workdir)
	setEnvValue("STYLEHUB_LOCATION", &c.System.Location)
	setEnvValue("STYLEHUB_ADMIN_EMAIL", &c.System.AdminEmail)
	setEnvValue("STYLEHUB_ADMIN_PASSWORD", &c.System.AdminPassword)
	setEnvBoolValue("STYLEHUB_SYSTEM_DEBUG", &c.System.Debug)
	setEnvBoolValue("STYLEHUB_SEED_DEMO", &c.System.SeedDemo)

	setEnvValue("STYLEHUB_WEB_HOST", &c.Web.Host)
	setEnvIntValue("STYLEHUB_WEB_PORT", &c.Web.Port)
	setEnvValue("STYLEHUB_WEB_SECRET", &c.Web.Secret)
	setEnvIntValue("STYLEHUB_SESSION_MAX_AGE", &c.Web.SessionMaxAge)
	setEnvBoolValue("STYLEHUB_SECURE_COOKIE", &c.Web.SecureCookie)
	setEnvValue("STYLEHUB_STATIC_DIR", &c.Web.StaticDir)
	setEnvValue("STYLEHUB_ADMIN_DIR", &c.Web.AdminDir)
	setEnvBoolValue("STYLEHUB_WEB_DEBUG", &c.Web.Debug)

	setEnvValue("STYLEHUB_DB_TYPE", &c.Database.Type)
	setEnvValue("STYLEHUB_DB_HOST", &c.Database.Host)
	setEnvIntValue("STYLEHUB_DB_PORT", &c.Database.Port)
	setEnvValue("STYLEHUB_DB_NAME", &c.Database.Name)
	setEnvValue("STYLEHUB_DB_USER", &c.Database.User)
	setEnvValue("STYLEHUB_DB_PWD", &c.Database.Passwd)
	setEnvBoolValue("STYLEHUB_DB_DEBUG", &c.Database.Debug)

	setEnvValue("STYLEHUB_LOGGER_MODE", &c.Logger.Mode)
	setEnvBoolValue("STYLEHUB_LOGGER_FILE_ENABLE", &c.Logger.FileEnable)

	setEnvBoolValue("STYLEHUB_MAIL_ENABLED", &c.Mail.Enabled)
	setEnvValue("STYLEHUB_MAIL_HOST", &c.Mail.Host)
	setEnvIntValue("STYLEHUB_MAIL_PORT", &c.Mail.Port)
	setEnvValue("STYLEHUB_MAIL_USER", &c.Mail.User)
	setEnvValue("STYLEHUB_MAIL_PASSWORD", &c.Mail.Password)
	setEnvValue("STYLEHUB_MAIL_ADMIN", &c.Mail.AdminAddress)
}

func setEnvValue(name string, val *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}
