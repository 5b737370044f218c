package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/DevinCastillo5/Library-App/shell/config"
)

const (
	serviceName    = "library"
	serviceVersion = "0.1.0"

	flagDriver      = "driver"
	flagDatabaseURL = "database-url"
	flagReplicaURL  = "replica-url"
	flagSQLitePath  = "sqlite-path"
	flagLogLevel    = "log-level"
)

type rootFlags struct {
	driver      string
	databaseURL string
	replicaURL  string
	sqlitePath  string
	logLevel    string
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Library circulation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.driver, flagDriver, "", "database driver: pgx, sql, sqlx or sqlite (env "+config.EnvDBDriver+")")
	pf.StringVar(&flags.databaseURL, flagDatabaseURL, "", "PostgreSQL connection URL (env "+config.EnvDatabaseURL+")")
	pf.StringVar(&flags.replicaURL, flagReplicaURL, "", "PostgreSQL read replica URL, pgx only (env "+config.EnvDatabaseReplicaURL+")")
	pf.StringVar(&flags.sqlitePath, flagSQLitePath, "", "SQLite database file (env "+config.EnvSQLitePath+")")
	pf.StringVar(&flags.logLevel, flagLogLevel, "", "debug, info, warn or error (env "+config.EnvLogLevel+")")

	load := func() (config.Config, error) {
		return loadConfig(pf, &flags)
	}

	root.AddCommand(
		newServeCommand(load),
		newInitDBCommand(load),
		newLoanCommand(load),
		newReserveCommand(load),
		newSeedCommand(load),
	)

	return root
}

// loadConfig reads the environment and lets explicitly set flags win.
func loadConfig(pf *pflag.FlagSet, flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if pf.Changed(flagDriver) {
		cfg.Database.Driver = flags.driver
	}

	if pf.Changed(flagDatabaseURL) {
		cfg.Database.URL = flags.databaseURL
	}

	if pf.Changed(flagReplicaURL) {
		cfg.Database.ReplicaURL = flags.replicaURL
	}

	if pf.Changed(flagSQLitePath) {
		cfg.Database.SQLitePath = flags.sqlitePath
	}

	if pf.Changed(flagLogLevel) {
		if err := cfg.LogLevel.UnmarshalText([]byte(flags.logLevel)); err != nil {
			return config.Config{}, err
		}
	}

	return cfg, cfg.Validate()
}

type configLoader func() (config.Config, error)
