package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/price-atlas/pkg/runtime/app"
	"github.com/de-tools/price-atlas/pkg/runtime/terminal"
	"github.com/de-tools/price-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/price-atlas/pkg/services/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	cli := terminal.NewCLI(terminal.Options{
		Open:   open,
		Output: os.Stdout,
	})

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func open(ctx context.Context, cfgPath string) (*commands.Deps, io.Closer, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.Open(ctx, cfg, app.Options{})
	if err != nil {
		return nil, nil, err
	}

	return &commands.Deps{
		Prices:   a.Prices,
		Importer: a.Importer,
	}, a, nil
}
