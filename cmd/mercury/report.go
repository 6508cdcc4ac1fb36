package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Simplici0/mercury/internal/costing"
	"github.com/Simplici0/mercury/internal/engine"
)

type reportOptions struct {
	catalog   string
	recipe    string
	batchSize float64
	margin    float64
	jsonOut   bool
}

type reportOutput struct {
	Quote       engine.Quote              `json:"quote"`
	Sensitivity costing.SensitivityReport `json:"sensitivity"`
}

func newReportCmd(cli *cliContext) *cobra.Command {
	opts := reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the cost breakdown and sensitivity analysis of a recipe",
		Example: `  mercury report --catalog data/ingredients.csv --recipe data/recipe.csv
  mercury report --catalog https://example.com/ingredients.csv --recipe cookies.yaml --batch-size 24 --json
  mercury report --catalog sqlite --recipe sqlite:cookies`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, cli, opts)
		},
	}

	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "Ingredients catalog location (defaults to CATALOG_SOURCE)")
	cmd.Flags().StringVar(&opts.recipe, "recipe", "", "Recipe location, or sqlite:NAME for a seeded recipe")
	cmd.Flags().Float64Var(&opts.batchSize, "batch-size", 0, "Items per batch (defaults to DEFAULT_BATCH_SIZE)")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "Profit multiplier, 3 means price = 4x cost (defaults to DEFAULT_MARGIN)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of text")
	_ = cmd.MarkFlagRequired("recipe")
	return cmd
}

func runReport(cmd *cobra.Command, cli *cliContext, opts reportOptions) error {
	ctx := cmd.Context()

	catalogLoc := opts.catalog
	if catalogLoc == "" {
		catalogLoc = cli.cfg.CatalogSource
	}

	defaults := engine.Defaults{BatchSize: cli.cfg.DefaultBatchSize, Margin: cli.cfg.DefaultMargin}
	if cmd.Flags().Changed("batch-size") {
		defaults.BatchSize = opts.batchSize
	}
	if cmd.Flags().Changed("margin") {
		defaults.Margin = opts.margin
	}
	if !(defaults.Margin > 0) {
		return &costing.InvalidMarginError{Margin: defaults.Margin}
	}

	defer cli.closeStore()

	catalogSrc, err := cli.catalogSource(ctx, catalogLoc)
	if err != nil {
		return err
	}
	recipeSrc, err := cli.recipeSource(ctx, opts.recipe)
	if err != nil {
		return err
	}

	eng := engine.New(defaults, cli.logger)
	if err := eng.Load(ctx, catalogSrc); err != nil {
		return err
	}
	recipe, err := recipeSrc.LoadRecipe(ctx)
	if err != nil {
		return err
	}

	quote, err := eng.Quote(recipe, defaults.BatchSize)
	if err != nil {
		return err
	}
	report, err := eng.Sensitivity(recipe, costing.SensitivityOptions{
		BatchSize: defaults.BatchSize,
		Margin:    defaults.Margin,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reportOutput{Quote: quote, Sensitivity: report})
	}
	printReport(out, quote, report)
	return nil
}

func printReport(w io.Writer, quote engine.Quote, report costing.SensitivityReport) {
	fmt.Fprintln(w, "Basic Cost Analysis:")
	fmt.Fprintf(w, "Total Batch Cost: %s\n", costing.FormatAmount(quote.TotalBatchCost))
	fmt.Fprintf(w, "Cost per Item: %s\n", costing.FormatAmount(quote.CostPerItem))
	fmt.Fprintf(w, "Suggested Selling Price: %s\n", costing.FormatAmount(quote.SuggestedPrice))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sensitivity Analysis:")
	fmt.Fprintf(w, "\nCost Variations (at batch size %s):\n", formatSize(quote.BatchSize))
	for _, v := range report.CostSensitivity {
		fmt.Fprintf(w, "At %s of base cost:\n", v.Label)
		printOutcome(w, v.Result, v.Error)
	}

	fmt.Fprintln(w, "\nBatch Size Variations:")
	for _, v := range report.BatchSizeSensitivity {
		fmt.Fprintf(w, "With batch size of %s:\n", formatSize(v.BatchSize))
		printOutcome(w, v.Result, v.Error)
	}
}

func printOutcome(w io.Writer, o *costing.Outcome, errText string) {
	if o == nil {
		fmt.Fprintf(w, "  %s\n", errText)
		return
	}
	fmt.Fprintf(w, "  Cost per Item: %s\n", costing.FormatAmount(o.CostPerItem))
	fmt.Fprintf(w, "  Suggested Price: %s\n", costing.FormatAmount(o.SuggestedPrice))
}

func formatSize(size float64) string {
	return strconv.FormatFloat(size, 'f', -1, 64)
}
