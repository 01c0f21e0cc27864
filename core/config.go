package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	apiConfig struct {
		BaseURL string
		Timeout time.Duration
		Trace   bool
	}

	sessionConfig struct {
		Storage   string // memory | file | sqlite
		TokenFile string
		DBPath    string
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string
		API          apiConfig
		Session      sessionConfig
	}
)

// NewConfig loads the configuration from the environment (prefixed with the current ENV)
// and an optional `config/.env.<env>` file.
func NewConfig() *Config {
	conf := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".mathbombs")

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "MathBombs")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("api.baseURL", "http://localhost:3000")
	conf.SetDefault("api.timeout", 15*time.Second)
	conf.SetDefault("session.storage", "file")
	conf.SetDefault("session.tokenFile", filepath.Join(dataDir, "auth-token.json"))
	conf.SetDefault("session.dbPath", filepath.Join(dataDir, "session.db"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	debug := conf.GetBool("debug")
	trace := debug
	if conf.IsSet("api.trace") {
		trace = conf.GetBool("api.trace")
	}

	return &Config{
		Env:          env,
		Debug:        debug,
		TestMode:     env == "TEST",
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		RollbarToken: conf.GetString("rollbarToken"),
		API: apiConfig{
			BaseURL: strings.TrimRight(conf.GetString("api.baseURL"), "/"),
			Timeout: conf.GetDuration("api.timeout"),
			Trace:   trace,
		},
		Session: sessionConfig{
			Storage:   CleanString(conf.GetString("session.storage"), true /* lower */),
			TokenFile: conf.GetString("session.tokenFile"),
			DBPath:    conf.GetString("session.dbPath"),
		},
	}
}
