package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultUsername    = "admin"
	defaultPassword    = "admin"
	defaultJournalPath = "orgsync.db"
	defaultLogLevel    = "info"
	defaultLogEnv      = "prod"
)

type Config struct {
	Grafana Grafana `yaml:"grafana"`
	Journal Journal `yaml:"journal"`
	Metrics Metrics `yaml:"metrics"`
	Log     Log     `yaml:"log"`
}

type Grafana struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Journal struct {
	Path string `yaml:"path"`
}

type Metrics struct {
	// Textfile is where prometheus metrics are written after a run, in the
	// node-exporter textfile collector format. Empty disables the export.
	Textfile string `yaml:"textfile"`
}

type Log struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

func Load(path string) (*Config, error) {
	configFile := true
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Default().Warn("fail find config file, proceeding", "path", path)
		configFile = false
	}

	var cfg Config
	if configFile {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
		if err := f.Close(); err != nil {
			slog.Default().Warn("fail close config file", "path", path, "error", err)
		}
	}

	if cfg.Grafana.Username == "" {
		cfg.Grafana.Username = defaultUsername
	}
	if cfg.Grafana.Password == "" {
		cfg.Grafana.Password = defaultPassword
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = defaultJournalPath
	}

	// Set log defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Env == "" {
		cfg.Log.Env = defaultLogEnv
	}

	// Override from environment if set
	if url := os.Getenv("GRAFANA_ORGSYNC_URL"); url != "" {
		cfg.Grafana.URL = url
	}
	if username := os.Getenv("GRAFANA_ORGSYNC_USERNAME"); username != "" {
		cfg.Grafana.Username = username
	}
	if password := os.Getenv("GRAFANA_ORGSYNC_PASSWORD"); password != "" {
		cfg.Grafana.Password = password
	}
	if journalPath := os.Getenv("GRAFANA_ORGSYNC_JOURNAL_PATH"); journalPath != "" {
		cfg.Journal.Path = journalPath
	}
	if textfile := os.Getenv("GRAFANA_ORGSYNC_METRICS_TEXTFILE"); textfile != "" {
		cfg.Metrics.Textfile = textfile
	}
	if loglevel := os.Getenv("GRAFANA_ORGSYNC_LOG_LEVEL"); loglevel != "" {
		cfg.Log.Level = loglevel
	}
	if logenv := os.Getenv("GRAFANA_ORGSYNC_LOG_ENV"); logenv != "" {
		cfg.Log.Env = logenv
	}
	return &cfg, nil
}
