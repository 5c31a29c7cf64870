// Package cli and it's sub packages implements the tidemark command line tool.
// The CLI operates on a project directory, denoted by "ExecutionDirectory" in
// the "ExecutionContext" struct.
//
// The ExecutionContext is passed to all the subcommands so that a singleton
// context is available for the execution. Logger, Spinner and the database
// adapter come from the same context.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tidemark/cli/internal/statestore"
	"github.com/tidemark/cli/internal/statestore/migrations"
	"github.com/tidemark/cli/migrate/database"
	"github.com/tidemark/cli/util"
	"github.com/tidemark/cli/version"
)

const (
	// Name of the project configuration file, without extension
	ConfigFileName = "config"
	// Name of the project configuration file as written by init
	ConfigFile = ConfigFileName + ".yaml"
	// Name of the default env file
	DefaultEnvfile = ".env"
)

// ErrDatabaseURLNotSet is returned when no database_url could be found in the
// config file, env vars or flags.
var ErrDatabaseURLNotSet = fmt.Errorf("database_url is not set, add it to %s, set %s_DATABASE_URL or pass --database-url", ConfigFile, util.ViperEnvPrefix)

// Config is the project configuration stored in config.yaml.
type Config struct {
	// DatabaseURL selects the driver by its scheme, e.g. postgres://, sqlite://
	DatabaseURL string `yaml:"database_url"`
	// MigrationTable is the name of the schema-log table.
	MigrationTable string `yaml:"migration_table,omitempty"`
	// VersionOrder is creation_time or execution_time.
	VersionOrder string `yaml:"version_order,omitempty"`
}

// ExecutionContext contains various contextual information required by the cli
// at various points of it's execution. Values are filled in by the
// initializers and passed on to each command. Commands can also fill in values
// to be used further down the line.
type ExecutionContext struct {
	// CMDName is the name of CMD (os.Args[0]).
	CMDName string

	// ID is a unique ID for this Execution
	ID string

	// Spinner is the global spinner object used to show progress across the cli.
	Spinner *spinner.Spinner
	// Logger is the global logger object to print logs.
	Logger *logrus.Logger

	// ExecutionDirectory is the directory in which command is being executed.
	ExecutionDirectory string
	// Envfile is the .env file to load ENV vars from
	Envfile string

	// Fs is the filesystem config and env files are read from.
	Fs afero.Fs
	// Stdout and Stderr receive command output.
	Stdout io.Writer
	Stderr io.Writer

	// Config is the configuration read from config file, env vars and flags.
	Config *Config
	// Options is the raw adapter option map built from the same sources. It
	// may carry deprecated keys, the adapter translates them.
	Options map[string]interface{}

	// Version indicates the version object
	Version *version.Version

	// Viper indicates the viper object for the execution
	Viper *viper.Viper

	// LogLevel indicates the logrus default logging level
	LogLevel string

	// NoColor indicates if the outputs shouldn't be colorized
	NoColor bool

	// IsTerminal indicates whether the current session is a terminal or not
	IsTerminal bool

	// DryRun makes the adapter log statements instead of running them.
	DryRun bool

	// DB is the handle opened by OpenDatabase. The execution context owns it.
	DB *sql.DB
	// Adapter is the database adapter for the configured database_url.
	Adapter *database.Adapter
	// MigrationsStateStore keeps the schema-log table.
	MigrationsStateStore statestore.MigrationsStateStore
}

// NewExecutionContext returns a new instance of execution context
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{}
}

// Prepare as the name suggests, prepares the ExecutionContext ec by
// initializing most of the variables to sensible defaults, if it is not already
// set.
func (ec *ExecutionContext) Prepare() error {
	// set the command name
	cmdName := os.Args[0]
	if len(cmdName) == 0 {
		cmdName = "tidemark"
	}
	ec.CMDName = cmdName

	ec.IsTerminal = term.IsTerminal(int(os.Stdout.Fd()))

	if ec.Fs == nil {
		ec.Fs = afero.NewOsFs()
	}
	if ec.Stdout == nil {
		ec.Stdout = os.Stdout
	}
	if ec.Stderr == nil {
		ec.Stderr = os.Stderr
	}

	// set spinner
	ec.setupSpinner()

	// set logger
	ec.setupLogger()

	// populate version
	ec.setVersion()

	if ec.ExecutionDirectory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "cannot get current working directory")
		}
		ec.ExecutionDirectory = wd
	}

	// initialize a blank config
	if ec.Config == nil {
		ec.Config = &Config{}
	}

	// generate an execution id
	if ec.ID == "" {
		id := "00000000-0000-0000-0000-000000000000"
		u, err := uuid.NewV4()
		if err == nil {
			id = u.String()
		} else {
			ec.Logger.Debugf("generating uuid for execution ID failed, %v", err)
		}
		ec.ID = id
		ec.Logger.Debugf("execution id: %v", ec.ID)
	}

	return nil
}

// Validate loads the env file and reads the configuration. Commands talking
// to the database call it before OpenDatabase.
func (ec *ExecutionContext) Validate() error {
	if ec.Envfile == "" {
		ec.Envfile = DefaultEnvfile
	}
	if err := ec.loadEnvfile(); err != nil {
		return errors.Wrap(err, "loading .env file failed")
	}
	return ec.readConfig()
}

// WriteConfig writes the configuration from ec.Config or input config
func (ec *ExecutionContext) WriteConfig(config *Config) error {
	cfg := ec.Config
	if config != nil {
		cfg = config
	}
	y, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return afero.WriteFile(ec.Fs, filepath.Join(ec.ExecutionDirectory, ConfigFile), y, 0644)
}

// readConfig reads the configuration from config file, flags and env vars,
// through viper.
func (ec *ExecutionContext) readConfig() error {
	if ec.Viper == nil {
		ec.Viper = viper.New()
	}
	v := ec.Viper
	v.SetFs(ec.Fs)
	v.SetEnvPrefix(util.ViperEnvPrefix)
	v.SetEnvKeyReplacer(util.ViperEnvReplacer)
	v.AutomaticEnv()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.SetDefault("database_url", "")
	v.SetDefault("dry_run", false)
	v.AddConfigPath(ec.ExecutionDirectory)
	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "cannot read config from file/env")
		}
		ec.Logger.Debugf("no %s found in %s, using env vars and flags only", ConfigFile, ec.ExecutionDirectory)
	}

	options := map[string]interface{}{}
	for _, key := range []string{
		database.OptionMigrationTable,
		database.OptionDefaultMigrationTable,
		database.OptionVersionOrder,
	} {
		if v.IsSet(key) {
			options[key] = v.Get(key)
		}
	}
	settings, err := database.DecodeSettings(options)
	if err != nil {
		return errors.Wrap(err, "invalid migration settings")
	}

	ec.Options = options
	ec.Config = &Config{
		DatabaseURL:    v.GetString("database_url"),
		MigrationTable: settings.MigrationTable,
		VersionOrder:   settings.VersionOrder,
	}
	ec.DryRun = v.GetBool("dry_run")
	if ec.Config.DatabaseURL == "" {
		return ErrDatabaseURLNotSet
	}
	return nil
}

// OpenDatabase connects to Config.DatabaseURL and wires the adapter and the
// state store. An adapter already present on the context is reused.
func (ec *ExecutionContext) OpenDatabase() error {
	if ec.Adapter == nil {
		db, adapter, err := database.Open(ec.Config.DatabaseURL, ec.Logger)
		if err != nil {
			return errors.Wrap(err, "cannot open database")
		}
		ec.DB = db
		ec.Adapter = adapter
	}
	if err := ec.Adapter.SetOptions(ec.Options); err != nil {
		return errors.Wrap(err, "cannot configure database adapter")
	}
	ec.Adapter.SetDryRun(ec.DryRun)
	if ec.MigrationsStateStore == nil {
		ec.MigrationsStateStore = migrations.NewMigrationStateStoreLogTable(ec.Adapter)
	}
	ec.Logger.WithFields(logrus.Fields{
		"dialect": ec.Adapter.Dialect().Name(),
		"table":   ec.Adapter.SchemaTableName(),
		"dry_run": ec.DryRun,
	}).Debug("database adapter ready")
	return nil
}

// Close releases the database handle opened by OpenDatabase, along with the
// adapter and state store built on it.
func (ec *ExecutionContext) Close() error {
	if ec.DB == nil {
		return nil
	}
	err := ec.DB.Close()
	ec.DB = nil
	ec.Adapter = nil
	ec.MigrationsStateStore = nil
	return err
}

// setupSpinner creates a default spinner if the context does not already have
// one.
func (ec *ExecutionContext) setupSpinner() {
	if ec.Spinner == nil {
		spnr := spinner.New(spinner.CharSets[7], 100*time.Millisecond)
		spnr.Writer = os.Stderr
		ec.Spinner = spnr
	}
}

// Spin stops any existing spinner and starts a new one with the given message.
func (ec *ExecutionContext) Spin(message string) {
	if ec.IsTerminal {
		ec.Spinner.Stop()
		ec.Spinner.Prefix = message
		ec.Spinner.Start()
	} else {
		ec.Logger.Println(message)
	}
}

// loadEnvfile loads .env file
func (ec *ExecutionContext) loadEnvfile() error {
	envfile := filepath.Join(ec.ExecutionDirectory, ec.Envfile)
	f, err := ec.Fs.Open(envfile)
	if err != nil {
		// return error if user provided envfile name
		if ec.Envfile != DefaultEnvfile {
			return err
		}
		if !os.IsNotExist(err) {
			ec.Logger.Warn(err)
		}
		return nil
	}
	defer f.Close()
	if err := gotenv.Apply(f); err != nil {
		return err
	}
	ec.Logger.Debug("ENV vars read from: ", envfile)
	return nil
}

// setupLogger creates a default logger if context does not have one set.
func (ec *ExecutionContext) setupLogger() {
	if ec.Logger == nil {
		logger := logrus.New()
		ec.Logger = logger
	}

	if ec.LogLevel != "" {
		level, err := logrus.ParseLevel(ec.LogLevel)
		if err != nil {
			ec.Logger.WithError(err).Error("error parsing log-level flag")
			return
		}
		ec.Logger.SetLevel(level)
	}

	ec.Logger.Hooks = make(logrus.LevelHooks)
	ec.Logger.AddHook(newSpinnerHandlerHook(ec.Logger, ec.Spinner, ec.IsTerminal, ec.NoColor))
}

// SetVersion sets the version inside context, according to the variable
// 'version' set during build context.
func (ec *ExecutionContext) setVersion() {
	if ec.Version == nil {
		ec.Version = version.New()
	}
}
