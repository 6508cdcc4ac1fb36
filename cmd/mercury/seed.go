package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/mercury/internal/migrations"
	"github.com/Simplici0/mercury/internal/seed"
	"github.com/Simplici0/mercury/internal/source"
)

type seedOptions struct {
	dbPath  string
	catalog string
	recipes []string
}

func newSeedCmd(cli *cliContext) *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate the SQLite store and import a catalog and named recipes",
		Example: `  mercury seed --db ./mercury.db --catalog data/ingredients.csv --recipe cookies=data/recipe.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, cli, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database path (defaults to DB_PATH)")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "Ingredients catalog location")
	cmd.Flags().StringArrayVar(&opts.recipes, "recipe", nil, "Recipe to import as name=location, repeatable")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

func runSeed(cmd *cobra.Command, cli *cliContext, opts seedOptions) error {
	ctx := cmd.Context()

	named := make([]struct{ name, location string }, 0, len(opts.recipes))
	for _, raw := range opts.recipes {
		name, location, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.TrimSpace(location) == "" {
			return fmt.Errorf("invalid --recipe %q, want name=location", raw)
		}
		named = append(named, struct{ name, location string }{name, location})
	}

	catalogDoc, err := source.OpenDocument(ctx, opts.catalog, cli.documentOptions())
	if err != nil {
		return fmt.Errorf("resolve catalog: %w", err)
	}
	catalog, err := source.Catalog(catalogDoc).LoadCatalog(ctx)
	if err != nil {
		return err
	}

	data := seed.Data{Catalog: catalog}
	for _, r := range named {
		doc, err := source.OpenDocument(ctx, r.location, cli.documentOptions())
		if err != nil {
			return fmt.Errorf("resolve recipe %q: %w", r.name, err)
		}
		recipe, err := source.Recipe(doc).LoadRecipe(ctx)
		if err != nil {
			return err
		}
		data.Recipes = append(data.Recipes, seed.NamedRecipe{Name: r.name, Recipe: recipe})
	}

	defer cli.closeStore()
	st, err := cli.store(opts.dbPath)
	if err != nil {
		return err
	}
	version, err := migrations.Version(st.DB)
	if err != nil {
		return err
	}

	stats, err := seed.Run(st.DB, data)
	if err != nil {
		return err
	}

	cli.logger.Info("seed completed",
		zap.Int64("schema_version", version),
		zap.Int("inserts", stats.Inserts),
		zap.Int("updates", stats.Updates),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	fmt.Fprintf(cmd.OutOrStdout(), "seed completed: %d inserts, %d updates\n", stats.Inserts, stats.Updates)
	return nil
}
