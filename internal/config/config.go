package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/ranch/internal/behavior"
	"github.com/udisondev/ranch/internal/model"
)

// RanchServer holds all configuration for the ranch server.
type RanchServer struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	LogLevel string `yaml:"log_level"`

	// World
	NavMesh string   `yaml:"navmesh"` // YAML mesh file
	Ranches []string `yaml:"ranches"`
	Seed    uint64   `yaml:"seed"`

	// Simulation
	TickInterval    time.Duration `yaml:"tick_interval"`     // manager cadence (default: 1s)
	MinTickInterval time.Duration `yaml:"min_tick_interval"` // gate (default: 1s)
	MaxTickDelta    time.Duration `yaml:"max_tick_delta"`    // clamp (default: 5s)
	MaxDropDistance float64       `yaml:"max_drop_distance"`

	Behavior behavior.Tunables   `yaml:"behavior"`
	Actors   []model.ActorConfig `yaml:"actors"`

	// Persistence
	Persistence  bool           `yaml:"persistence"`
	SaveInterval time.Duration  `yaml:"save_interval"`
	Database     DatabaseConfig `yaml:"database"`

	// WebSocket write queue / timeouts
	WriteTimeout  time.Duration `yaml:"write_timeout"`   // per-write deadline (default: 5s)
	ReadTimeout   time.Duration `yaml:"read_timeout"`    // idle client disconnect (default: 60s)
	SendQueueSize int           `yaml:"send_queue_size"` // per-client outbox capacity (default: 64)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Addr returns the HTTP listen address.
func (c RanchServer) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

// DefaultRanchServer returns RanchServer config with sensible defaults.
func DefaultRanchServer() RanchServer {
	return RanchServer{
		BindAddress:     "0.0.0.0",
		Port:            8080,
		LogLevel:        "info",
		NavMesh:         "config/navmesh.yaml",
		Ranches:         []string{"default"},
		Seed:            1,
		TickInterval:    time.Second,
		MinTickInterval: time.Second,
		MaxTickDelta:    5 * time.Second,
		MaxDropDistance: 5,
		Behavior:        behavior.DefaultTunables(),
		Actors:          model.DefaultActorConfigs(),
		Persistence:     false,
		SaveInterval:    30 * time.Second,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "ranch",
			Password: "ranch",
			DBName:   "ranch",
			SSLMode:  "disable",
		},
		WriteTimeout:  5 * time.Second,
		ReadTimeout:   60 * time.Second,
		SendQueueSize: 64,
	}
}

// LoadRanchServer loads ranch server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadRanchServer(path string) (RanchServer, error) {
	cfg := DefaultRanchServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	// The actor table is replaced as a whole, not merged by index.
	cfg.Actors = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Actors) == 0 {
		cfg.Actors = model.DefaultActorConfigs()
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the server cannot start without.
func (c RanchServer) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if len(c.Ranches) == 0 {
		return fmt.Errorf("no ranches configured")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if c.MaxTickDelta < c.MinTickInterval {
		return fmt.Errorf("max_tick_delta %s below min_tick_interval %s", c.MaxTickDelta, c.MinTickInterval)
	}
	for _, a := range c.Actors {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}
