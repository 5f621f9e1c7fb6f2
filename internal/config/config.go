package config

import (
	"class-seat-monitor/internal/models"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSchedulerURL = "https://resources.msoe.edu/sched/"
	// DefaultInterval is used when no valid interval is given (5 minutes).
	DefaultInterval     = 300
	DefaultProbeTimeout = 5 * time.Second
	// DefaultMinSpacing sits one second above the default toast display time.
	DefaultMinSpacing = 6 * time.Second
	DefaultQueueSize  = 32

	DriverPlaywright = "playwright"
	DriverRod        = "rod"

	appDirName = ".class-seat-monitor"
)

// Config represents the application configuration
type Config struct {
	Monitor MonitorConfig             `yaml:"monitor"`
	Courses []models.CourseIdentifier `yaml:"courses" validate:"dive"`
	Notify  NotifyConfig              `yaml:"notify"`
	Status  StatusConfig              `yaml:"status"`
	Log     LogConfig                 `yaml:"log"`
}

// MonitorConfig represents polling and browser settings
type MonitorConfig struct {
	Interval     int           `yaml:"interval" validate:"gt=0,lte=9223372036"` // in seconds, at most MaxIntervalSeconds
	SchedulerURL string        `yaml:"scheduler_url" validate:"required,url"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" validate:"gt=0"`
	Driver       string        `yaml:"driver" validate:"oneof=playwright rod"`
	Headless     bool          `yaml:"headless"`
	BrowserPath  string        `yaml:"browser_path,omitempty"`
}

// IntervalDuration returns the configured interval as a duration. Values too
// large for a duration yield zero, which a run rejects.
func (m MonitorConfig) IntervalDuration() time.Duration {
	if int64(m.Interval) > MaxIntervalSeconds {
		return 0
	}
	return time.Duration(m.Interval) * time.Second
}

// NotifyConfig represents notification delivery settings
type NotifyConfig struct {
	MinSpacing time.Duration `yaml:"min_spacing" validate:"gte=0"`
	QueueSize  int           `yaml:"queue_size" validate:"gt=0"`
	// Cooldown suppresses repeat notifications for the same course. Zero
	// notifies on every available outcome.
	Cooldown time.Duration `yaml:"cooldown" validate:"gte=0"`
	Desktop  bool          `yaml:"desktop"`
	Email    EmailConfig   `yaml:"email"`
}

// EmailConfig represents email notification settings
type EmailConfig struct {
	Enabled bool       `yaml:"enabled"`
	SMTP    SMTPConfig `yaml:"smtp"`
	From    string     `yaml:"from" validate:"required_if=Enabled true"`
	To      []string   `yaml:"to" validate:"required_if=Enabled true,dive,email"`
	Subject string     `yaml:"subject"`
}

// SMTPConfig represents SMTP server settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StatusConfig bounds the in-memory status log. Zero keeps every entry.
type StatusConfig struct {
	MaxEntries int `yaml:"max_entries" validate:"gte=0"`
}

// LogConfig represents logging settings
type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=console json"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gt=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Interval:     DefaultInterval,
			SchedulerURL: DefaultSchedulerURL,
			ProbeTimeout: DefaultProbeTimeout,
			Driver:       DriverPlaywright,
			Headless:     true,
		},
		Courses: []models.CourseIdentifier{},
		Notify: NotifyConfig{
			MinSpacing: DefaultMinSpacing,
			QueueSize:  DefaultQueueSize,
			Desktop:    true,
			Email: EmailConfig{
				To:      []string{},
				Subject: "Class seat available",
				SMTP: SMTPConfig{
					Host: "smtp.gmail.com",
					Port: 587,
				},
			},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// GetConfigPath finds the configuration file path
func GetConfigPath(fs afero.Fs) string {
	// 1. configs/config.yaml next to the executable
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)

		// inside a macOS .app bundle the file lives in Contents/Resources
		if filepath.Base(execDir) == "MacOS" {
			resourcesPath := filepath.Join(filepath.Dir(execDir), "Resources", "configs", "config.yaml")
			if exists(fs, resourcesPath) {
				return resourcesPath
			}
		}

		configPath := filepath.Join(execDir, "configs", "config.yaml")
		if exists(fs, configPath) {
			return configPath
		}
	}

	// 2. configs/config.yaml in the working directory
	configPath := filepath.Join("configs", "config.yaml")
	if exists(fs, configPath) {
		return configPath
	}

	// 3. ~/.class-seat-monitor/config.yaml
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, appDirName, "config.yaml")
}

// DataDir returns the per-user directory for logs and browser data.
func DataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, appDirName)
}

func exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// Load reads, parses and validates the configuration file. Values missing
// from the file keep their defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath(fs)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Courses = models.UniqueCourses(cfg.Courses)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not
// exist yet.
func LoadOrDefault(fs afero.Fs, path string) (*Config, error) {
	cfg, err := Load(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save saves the configuration to file
func Save(fs afero.Fs, path string, cfg *Config) error {
	if path == "" {
		path = GetConfigPath(fs)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
