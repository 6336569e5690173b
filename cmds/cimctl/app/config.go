package app

import (
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/mandelsoft/cimrepository/pkg/utils"
)

const DEFAULT_SERVER = "http://localhost:8080"

type Config struct {
	Namespace *string `json:"namespace,omitempty"`
	Server    *string `json:"server,omitempty"`
}

func GetConfig() *Config {
	var cfg Config

	dir, err := os.UserHomeDir()
	if err == nil {
		MergeConfig(&cfg, ReadConfig(filepath.Join(dir, ".cimctl")))
	}
	dir, err = os.UserConfigDir()
	if err == nil {
		MergeConfig(&cfg, ReadConfig(filepath.Join(dir, ".cimctl")))
	}
	MergeConfig(&cfg, ReadConfig(".cimctl"))

	if v := os.Getenv("CIM_SERVER"); v != "" {
		cfg.Server = utils.Pointer(v)
	}
	if v := os.Getenv("CIM_NAMESPACE"); v != "" {
		cfg.Namespace = utils.Pointer(v)
	}
	if cfg.Server == nil || *cfg.Server == "" {
		cfg.Server = utils.Pointer(DEFAULT_SERVER)
	}
	if cfg.Namespace == nil {
		cfg.Namespace = utils.Pointer("")
	}
	return &cfg
}

// ReadConfig reads a config file. Missing or invalid files are ignored.
func ReadConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil
	}
	return &cfg
}

func MergeConfig(cfg *Config, add *Config) {
	if add == nil {
		return
	}
	if add.Namespace != nil {
		cfg.Namespace = add.Namespace
	}
	if add.Server != nil {
		cfg.Server = add.Server
	}
}
