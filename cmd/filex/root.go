package main

import (
	"github.com/nasdf/filex"
	"github.com/nasdf/filex/config"
	"github.com/nasdf/filex/core"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	configPath string
	dbPath     string

	log *zap.Logger
	db  *core.DB
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "filex",
		Short:         "Query and modify a filex database file",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to the database file")

	root.AddCommand(
		collectionsCommand(a),
		countCommand(a),
		findCommand(a),
		findOneCommand(a),
		findByIDCommand(a),
		insertCommand(a),
		insertManyCommand(a),
		updateCommand(a),
		updateManyCommand(a),
		updateByIDCommand(a),
		deleteCommand(a),
		deleteManyCommand(a),
		deleteByIDCommand(a),
		exportCommand(a),
		importCommand(a),
		renameCommand(a),
		dropCommand(a),
		serveCommand(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Path = a.dbPath
	}
	a.log, err = cfg.Logger()
	if err != nil {
		return err
	}
	a.db, err = filex.Open(cmd.Context(), cfg.Path,
		core.WithLogger(a.log.Sugar()),
		core.WithExportDir(cfg.ExportDir),
	)
	return err
}

func (a *app) close() error {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}
	if a.log != nil {
		a.log.Sync() //nolint:errcheck
	}
	return nil
}
