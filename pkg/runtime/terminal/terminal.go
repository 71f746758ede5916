package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/price-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/price-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// OpenFunc wires the command dependencies from the config file at cfgPath.
// The returned closer releases them once the command finished.
type OpenFunc func(ctx context.Context, cfgPath string) (*commands.Deps, io.Closer, error)

// CLI represents the command-line interface
type CLI struct {
	open     OpenFunc
	reporter *export.Reporter
	rootCmd  *cobra.Command

	cfgPath string
	deps    *commands.Deps
	closer  io.Closer
}

// Options contain configuration for the CLI
type Options struct {
	Open   OpenFunc
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		open:     opts.Open,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	err := cli.rootCmd.ExecuteContext(ctx)
	if cli.closer != nil {
		if cerr := cli.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// SetArgs overrides os.Args for the next Execute call.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) provider(ctx context.Context) (*commands.Deps, error) {
	if cli.deps != nil {
		return cli.deps, nil
	}
	deps, closer, err := cli.open(ctx, cli.cfgPath)
	if err != nil {
		return nil, err
	}
	cli.deps, cli.closer = deps, closer
	return deps, nil
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "priceatlas",
		Short:         "Commodity price history and forecasts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cli.cfgPath, "config", "", "Path to the config file (YAML, JSON or TOML)")

	cmd.AddCommand(commands.NewImportCmd(cli.provider))
	cmd.AddCommand(commands.NewImportsCmd(cli.provider, cli.reporter))
	cmd.AddCommand(commands.NewCommoditiesCmd(cli.provider, cli.reporter))
	cmd.AddCommand(commands.NewForecastCmd(cli.provider, cli.reporter))
	cmd.AddCommand(commands.NewYearCmd(cli.provider, cli.reporter))
	cmd.AddCommand(commands.NewOverrideCmd(cli.provider))

	return cmd
}
