// Package config provides the configuration of the repository server.
// Configuration files are YAML documents. Environment variables
// in the file content are substituted before parsing.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/drone/envsubst"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"sigs.k8s.io/yaml"

	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/impl/database/boltdb"
	"github.com/mandelsoft/cimrepository/pkg/impl/database/filesystem"
	"github.com/mandelsoft/cimrepository/pkg/namespace"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

const (
	DB_FILESYSTEM = "filesystem"
	DB_BOLT       = "boltdb"
)

type Config struct {
	Server     ServerConfig      `json:"server,omitempty"`
	Database   DatabaseConfig    `json:"database,omitempty"`
	Logging    LoggingConfig     `json:"logging,omitempty"`
	Namespaces []NamespaceConfig `json:"namespaces,omitempty"`
}

type ServerConfig struct {
	Port            *int      `json:"port,omitempty"`
	Host            *string   `json:"host,omitempty"`
	Prefix          *string   `json:"prefix,omitempty"`
	ShutdownTimeout *Duration `json:"shutdownTimeout,omitempty"`
	HealthPeriod    *Duration `json:"healthPeriod,omitempty"`
}

type DatabaseConfig struct {
	Type *string `json:"type,omitempty"`
	Path *string `json:"path,omitempty"`
}

type LoggingConfig struct {
	Level *string `json:"level,omitempty"`
	// Realms maps realm prefixes to log levels.
	Realms map[string]string `json:"realms,omitempty"`
}

// NamespaceConfig describes a namespace created on startup if it
// does not exist yet.
type NamespaceConfig struct {
	Name string `json:"name"`
	namespace.Attributes
	StandardQualifiers bool `json:"standardQualifiers,omitempty"`
}

// Duration is a time.Duration in its string notation.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Duration(d).String())), nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used for unset fields.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            utils.Pointer(8080),
			Prefix:          utils.Pointer("/cim"),
			ShutdownTimeout: utils.Pointer(Duration(10 * time.Second)),
			HealthPeriod:    utils.Pointer(Duration(30 * time.Second)),
		},
		Database: DatabaseConfig{
			Type: utils.Pointer(DB_FILESYSTEM),
			Path: utils.Pointer("cimdb"),
		},
		Logging: LoggingConfig{
			Level: utils.Pointer("info"),
		},
	}
}

// Parse substitutes environment variables and parses a configuration.
func Parse(data []byte) (*Config, error) {
	text, err := envsubst.EvalEnv(string(data))
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalStrict([]byte(text), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadConfig reads a configuration file.
func ReadConfig(path string, fss ...vfs.FileSystem) (*Config, error) {
	fs := utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), fss...)
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// GetConfig merges the default configuration and the given
// configuration files. Missing files are ignored.
func GetConfig(fs vfs.FileSystem, paths ...string) (*Config, error) {
	cfg := Default()
	for _, p := range paths {
		if ok, err := vfs.FileExists(fs, p); err != nil || !ok {
			continue
		}
		add, err := ReadConfig(p, fs)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, add)
	}
	return cfg, nil
}

// MergeConfig overwrites the fields of cfg set in add. Namespaces
// are appended, realm levels are merged.
func MergeConfig(cfg *Config, add *Config) {
	if add == nil {
		return
	}
	merge(&cfg.Server.Port, add.Server.Port)
	merge(&cfg.Server.Host, add.Server.Host)
	merge(&cfg.Server.Prefix, add.Server.Prefix)
	merge(&cfg.Server.ShutdownTimeout, add.Server.ShutdownTimeout)
	merge(&cfg.Server.HealthPeriod, add.Server.HealthPeriod)
	merge(&cfg.Database.Type, add.Database.Type)
	merge(&cfg.Database.Path, add.Database.Path)
	merge(&cfg.Logging.Level, add.Logging.Level)
	for r, l := range add.Logging.Realms {
		if cfg.Logging.Realms == nil {
			cfg.Logging.Realms = map[string]string{}
		}
		cfg.Logging.Realms[r] = l
	}
	cfg.Namespaces = append(cfg.Namespaces, add.Namespaces...)
}

func merge[T any](f **T, v *T) {
	if v != nil {
		*f = v
	}
}

// DatabaseSpecification provides the configured store.
func (c *Config) DatabaseSpecification(fss ...vfs.FileSystem) (database.Specification[database.Object], error) {
	path := c.Database.Path
	if path == nil || *path == "" {
		return nil, fmt.Errorf("database path required")
	}
	typ := DB_FILESYSTEM
	if c.Database.Type != nil {
		typ = *c.Database.Type
	}
	switch typ {
	case DB_FILESYSTEM:
		return filesystem.NewSpecification[database.Object](*path, fss...), nil
	case DB_BOLT:
		return boltdb.NewSpecification[database.Object](*path), nil
	}
	return nil, fmt.Errorf("unknown database type %q", typ)
}
