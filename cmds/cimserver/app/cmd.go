package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mandelsoft/cimrepository/pkg/config"
	"github.com/mandelsoft/cimrepository/pkg/healthz"
	"github.com/mandelsoft/cimrepository/pkg/repository"
	rservice "github.com/mandelsoft/cimrepository/pkg/repository/service"
	"github.com/mandelsoft/cimrepository/pkg/server"
	"github.com/mandelsoft/cimrepository/pkg/service"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

type Options struct {
	fs      vfs.FileSystem
	configs []string

	port     int
	host     string
	dbType   string
	database string
	level    string
}

func New(fss ...vfs.FileSystem) *cobra.Command {
	return NewOptions(fss...).Command()
}

func NewOptions(fss ...vfs.FileSystem) *Options {
	return &Options{
		fs: utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), fss...),
	}
}

// Command provides the command for the options.
func (o *Options) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cimserver <options>",
		Short: "run a CIM schema repository server",
		Long: `
This command serves a CIM schema repository via http. Configuration
files are read from the user config directory (cimserver/config.yaml),
the current directory (.cimserver) and the given config options.
Explicit options override the configuration.
`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error { return o.Run(cmd.Context(), cmd) }

	o.AddFlags(cmd.Flags())
	return cmd
}

func (o *Options) AddFlags(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&o.configs, "config", "c", nil, "configuration file")
	flags.IntVarP(&o.port, "port", "p", 0, "server port")
	flags.StringVarP(&o.host, "host", "H", "", "host name used in object paths")
	flags.StringVarP(&o.dbType, "database-type", "t", "", "database type (filesystem, boltdb)")
	flags.StringVarP(&o.database, "database", "d", "", "database path")
	flags.StringVarP(&o.level, "log-level", "L", "", "log level")
}

// Config provides the effective configuration.
func (o *Options) Config(cmd *cobra.Command) (*config.Config, error) {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "cimserver", "config.yaml"))
	}
	paths = append(paths, ".cimserver")
	for _, c := range o.configs {
		if ok, err := vfs.FileExists(o.fs, c); err != nil || !ok {
			return nil, fmt.Errorf("config file %q not found", c)
		}
	}
	cfg, err := config.GetConfig(o.fs, append(paths, o.configs...)...)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = &o.port
	}
	if flags.Changed("host") {
		cfg.Server.Host = &o.host
	}
	if flags.Changed("database-type") {
		cfg.Database.Type = &o.dbType
	}
	if flags.Changed("database") {
		cfg.Database.Path = &o.database
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = &o.level
	}
	return cfg, nil
}

func (o *Options) Run(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := o.Config(cmd)
	if err != nil {
		return err
	}
	if err := configureLogging(logging.DefaultContext(), *cfg.Logging.Level, cfg.Logging.Realms); err != nil {
		return err
	}

	repo, err := OpenRepository(cfg, o.fs)
	if err != nil {
		return err
	}
	defer repo.Close()

	srv := server.NewServer(*cfg.Server.Port, true, time.Duration(*cfg.Server.ShutdownTimeout))
	access := rservice.New(repo, *cfg.Server.Prefix)
	access.RegisterHandler(srv)
	defer access.Close()

	services := service.New(ctx)
	if err := services.Add(srv); err != nil {
		return err
	}
	if err := services.Start(); err != nil {
		return err
	}
	healthz.Monitor(ctx, "repository", time.Duration(*cfg.Server.HealthPeriod), func() error {
		return CheckRepository(repo)
	})
	log.Info("serving repository on port {{port}}", "port", *cfg.Server.Port, "prefix", *cfg.Server.Prefix)

	<-ctx.Done()
	services.Stop()
	return services.Wait()
}

// OpenRepository opens the configured repository and creates the
// configured namespaces not yet present.
func OpenRepository(cfg *config.Config, fs vfs.FileSystem) (*repository.Repository, error) {
	spec, err := cfg.DatabaseSpecification(fs)
	if err != nil {
		return nil, err
	}
	var host []string
	if cfg.Server.Host != nil {
		host = append(host, *cfg.Server.Host)
	}
	repo, err := repository.Open(spec, host...)
	if err != nil {
		return nil, err
	}
	for _, n := range cfg.Namespaces {
		if _, err := repo.GetNameSpaceAttributes(n.Name); err == nil {
			continue
		}
		log.Info("creating namespace {{namespace}}", "namespace", n.Name)
		if err := repo.CreateNameSpace(n.Name, n.Attributes); err != nil {
			repo.Close()
			return nil, err
		}
		if n.StandardQualifiers {
			if err := repo.InstallStandardQualifiers(n.Name); err != nil {
				repo.Close()
				return nil, err
			}
		}
	}
	return repo, nil
}

// CheckRepository reads the qualifier declarations of the first namespace.
// A repository without namespaces is healthy.
func CheckRepository(repo *repository.Repository) error {
	list := repo.EnumerateNameSpaces()
	if len(list) == 0 {
		return nil
	}
	_, err := repo.EnumerateQualifierDecls(list[0])
	return err
}
