package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/mercury/internal/config"
	"github.com/Simplici0/mercury/internal/db"
	"github.com/Simplici0/mercury/internal/logging"
	"github.com/Simplici0/mercury/internal/migrations"
	"github.com/Simplici0/mercury/internal/source"
)

// storedRecipePrefix selects a recipe saved by the seed command, as in sqlite:cookies.
const storedRecipePrefix = config.SQLiteCatalog + ":"

type cliContext struct {
	cfg     config.Config
	logger  *zap.Logger
	verbose bool

	conn *sql.DB
}

func newRootCmd() *cobra.Command {
	cli := &cliContext{}

	root := &cobra.Command{
		Use:   "mercury",
		Short: "Recipe batch costing and sensitivity analysis",
		Long: `mercury prices a recipe from an ingredients catalog: total batch cost,
cost per item, a suggested selling price, and how those move when ingredient
costs or batch sizes change.

Catalog and recipe locations may be local paths, http(s) URLs or s3://bucket/key.
Files ending in .yaml or .yml are read as YAML, everything else as CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.cfg = config.Load()
			level := cli.cfg.LogLevel
			if !cli.verbose {
				level = "warn"
			}
			logger, err := logging.New(level, true)
			if err != nil {
				return err
			}
			cli.logger = logger
			for _, w := range cli.cfg.Warnings {
				logger.Warn("configuration", zap.String("warning", w))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cli.logger != nil {
				_ = cli.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Log at the configured LOG_LEVEL instead of warn")

	root.AddCommand(newReportCmd(cli))
	root.AddCommand(newSeedCmd(cli))
	root.AddCommand(newRecipesCmd(cli))
	return root
}

func (c *cliContext) documentOptions() source.Options {
	return source.Options{
		HTTPClient: &http.Client{Timeout: c.cfg.FetchTimeout},
		S3Region:   c.cfg.S3Region,
		S3Endpoint: c.cfg.S3Endpoint,
	}
}

// store opens and migrates the SQLite store at path, or at DB_PATH when path
// is empty. The connection is shared until closeStore.
func (c *cliContext) store(path string) (source.Store, error) {
	if c.conn == nil {
		if path == "" {
			path = c.cfg.DBPath
		}
		conn, err := db.Open(path)
		if err != nil {
			return source.Store{}, fmt.Errorf("open database: %w", err)
		}
		if err := migrations.Up(conn); err != nil {
			_ = conn.Close()
			return source.Store{}, err
		}
		c.conn = conn
	}
	return source.Store{DB: c.conn}, nil
}

func (c *cliContext) closeStore() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// catalogSource resolves a catalog location. The literal "sqlite" reads the
// catalog from the store at DB_PATH.
func (c *cliContext) catalogSource(ctx context.Context, location string) (source.CatalogSource, error) {
	if strings.EqualFold(strings.TrimSpace(location), config.SQLiteCatalog) {
		st, err := c.store("")
		if err != nil {
			return nil, err
		}
		return st, nil
	}

	doc, err := source.OpenDocument(ctx, location, c.documentOptions())
	if err != nil {
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}
	return source.Catalog(doc), nil
}

// recipeSource resolves a recipe location. sqlite:NAME reads a stored recipe.
func (c *cliContext) recipeSource(ctx context.Context, location string) (source.RecipeSource, error) {
	location = strings.TrimSpace(location)
	if len(location) > len(storedRecipePrefix) && strings.EqualFold(location[:len(storedRecipePrefix)], storedRecipePrefix) {
		st, err := c.store("")
		if err != nil {
			return nil, err
		}
		return st.Recipe(location[len(storedRecipePrefix):]), nil
	}

	doc, err := source.OpenDocument(ctx, location, c.documentOptions())
	if err != nil {
		return nil, fmt.Errorf("resolve recipe: %w", err)
	}
	return source.Recipe(doc), nil
}
