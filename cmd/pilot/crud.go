package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/docstore"
	"github.com/entrhq/pilot/pkg/tutorial"
)

type crudFlags struct {
	uri            string
	database       string
	collection     string
	connectTimeout time.Duration
	seed           string
	reset          bool
	drop           bool
	color          bool
}

func newCrudCmd(a *app) *cobra.Command {
	f := &crudFlags{}
	cmd := &cobra.Command{
		Use:   "crud",
		Short: "Run the MongoDB create/read/update/delete walkthrough",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			err := tutorial.Main(cmd.Context(), f.tutorialConfig(a.cfg.Mongo), cmd.OutOrStdout())
			if err != nil {
				return &reportedError{err: err}
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.uri, "uri", "", "MongoDB connection string (default mongodb://localhost:27017/)")
	fl.StringVar(&f.database, "database", "", "database name (default mydatabase)")
	fl.StringVar(&f.collection, "collection", "", "collection name (default mycollection)")
	fl.DurationVar(&f.connectTimeout, "connect-timeout", 0, "how long to wait for the server")
	fl.StringVar(&f.seed, "seed", "", "YAML file replacing the sample documents")
	fl.BoolVar(&f.reset, "reset", false, "delete existing documents first")
	fl.BoolVar(&f.drop, "drop", false, "drop the collection at the end")
	fl.BoolVar(&f.color, "color", false, "syntax-highlight printed documents")
	return cmd
}

func (f *crudFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("uri") {
		cfg.Mongo.URI = f.uri
	}
	if changed("database") {
		cfg.Mongo.Database = f.database
	}
	if changed("collection") {
		cfg.Mongo.Collection = f.collection
	}
	if changed("connect-timeout") {
		cfg.Mongo.ConnectTimeout = f.connectTimeout
	}
}

func (f *crudFlags) tutorialConfig(m config.MongoConfig) tutorial.Config {
	return tutorial.Config{
		Store: docstore.Options{
			URI:            m.URI,
			Database:       m.Database,
			Collection:     m.Collection,
			ConnectTimeout: m.ConnectTimeout,
		},
		SeedFile: f.seed,
		Reset:    f.reset,
		Drop:     f.drop,
		Color:    f.color,
	}
}
