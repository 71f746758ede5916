package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/price-atlas/pkg/services/importer"
	"github.com/spf13/cobra"
)

const commandTimeout = 60 * time.Second

func NewImportCmd(provider Provider) *cobra.Command {
	var (
		path    string
		source  string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import observations from a CSV or XLSX reference file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			deps, err := provider(ctx)
			if err != nil {
				return err
			}
			result, err := deps.Importer.ImportFile(ctx, path, importer.Options{Source: source, Replace: replace})
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Read %d rows (%d valid, %d dropped), replaced %d\n",
				result.Read, result.Report.Accepted, result.Report.Dropped, result.Replaced)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Path to the reference file (.csv or .xlsx)")
	cmd.Flags().StringVar(&source, "source", "", "Source label for the imported rows")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace rows previously imported under the same source")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func NewImportsCmd(provider Provider, reporter *export.Reporter) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List recent reference file imports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := provider(cmd.Context())
			if err != nil {
				return err
			}
			runs, err := deps.Importer.Runs(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list imports: %w", err)
			}
			return reporter.Imports(runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of imports to show")
	return cmd
}

func NewCommoditiesCmd(provider Provider, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "commodities",
		Short: "List commodities with their current price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := provider(cmd.Context())
			if err != nil {
				return err
			}
			return reporter.Commodities(deps.Prices.Commodities())
		},
	}
}

func NewForecastCmd(provider Provider, reporter *export.Reporter) *cobra.Command {
	var (
		flags keyFlags
		date  string
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast the price of a commodity on a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}
			deps, err := provider(cmd.Context())
			if err != nil {
				return err
			}
			target, err := parseDate(date, deps.now())
			if err != nil {
				return err
			}
			return reporter.Forecast(deps.Prices.Forecast(key, target))
		},
	}

	cmd.Flags().StringVar(&flags.commodity, "commodity", "", "Commodity name")
	cmd.Flags().StringVar(&flags.specification, "spec", "", "Commodity specification")
	cmd.Flags().StringVar(&date, "date", "", "Target date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("commodity")

	return cmd
}

const (
	formatTable = "table"
	formatXLSX  = "xlsx"
	formatPNG   = "png"
)

func NewYearCmd(provider Provider, reporter *export.Reporter) *cobra.Command {
	var (
		flags  keyFlags
		year   int
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "year",
		Short: "Show monthly average prices for one calendar year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}
			if format != formatTable && format != formatXLSX && format != formatPNG {
				return fmt.Errorf("unsupported format %q, expected table, xlsx or png", format)
			}
			if format != formatTable && out == "" {
				return fmt.Errorf("--out is required for %s output", format)
			}

			deps, err := provider(cmd.Context())
			if err != nil {
				return err
			}
			if year == 0 {
				year = deps.now().Year()
			}
			series := deps.Prices.YearSeries(key, year)

			switch format {
			case formatXLSX:
				return writeFile(out, func(w io.Writer) error { return export.WriteYearWorkbook(w, series) })
			case formatPNG:
				return writeFile(out, func(w io.Writer) error { return export.WriteYearChart(w, series) })
			default:
				return reporter.Year(series)
			}
		},
	}

	cmd.Flags().StringVar(&flags.commodity, "commodity", "", "Commodity name")
	cmd.Flags().StringVar(&flags.specification, "spec", "", "Commodity specification")
	cmd.Flags().IntVar(&year, "year", 0, "Calendar year (default current year)")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, xlsx or png")
	cmd.Flags().StringVar(&out, "out", "", "Output file for xlsx and png formats")
	_ = cmd.MarkFlagRequired("commodity")

	return cmd
}

func NewOverrideCmd(provider Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Manage manual current-price overrides",
	}
	cmd.AddCommand(newOverrideSetCmd(provider), newOverrideClearCmd(provider))
	return cmd
}

func newOverrideSetCmd(provider Provider) *cobra.Command {
	var (
		flags keyFlags
		price float64
		date  string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the current price of a commodity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}
			if !domain.ValidPrice(price) {
				return fmt.Errorf("--price must be greater than zero")
			}
			deps, err := provider(cmd.Context())
			if err != nil {
				return err
			}
			on, err := parseDate(date, deps.now())
			if err != nil {
				return err
			}
			if err := deps.Prices.SetOverride(cmd.Context(), domain.PriceOverride{Key: key, Date: on, Price: price}); err != nil {
				return fmt.Errorf("failed to set override: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Override for %s set to %.2f as of %s\n", key, price, on.Format(domain.DateLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.commodity, "commodity", "", "Commodity name")
	cmd.Flags().StringVar(&flags.specification, "spec", "", "Commodity specification")
	cmd.Flags().Float64Var(&price, "price", 0, "Current price")
	cmd.Flags().StringVar(&date, "date", "", "Effective date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("commodity")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newOverrideClearCmd(provider Provider) *cobra.Command {
	var flags keyFlags
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the manual price override of a commodity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}
			deps, err := provider(cmd.Context())
			if err != nil {
				return err
			}
			if err := deps.Prices.ClearOverride(cmd.Context(), key); err != nil {
				return fmt.Errorf("failed to clear override: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Override for %s cleared\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.commodity, "commodity", "", "Commodity name")
	cmd.Flags().StringVar(&flags.specification, "spec", "", "Commodity specification")
	_ = cmd.MarkFlagRequired("commodity")

	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
