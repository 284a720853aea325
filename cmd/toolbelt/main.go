package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/toolbelt-dev/toolbelt/cli"
	beltotel "github.com/toolbelt-dev/toolbelt/otel"
	"github.com/toolbelt-dev/toolbelt/tool"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	shutdown, err := beltotel.Setup(ctx, beltotel.Config{
		Endpoint:    os.Getenv("TOOLBELT_OTLP_ENDPOINT"),
		ServiceName: "toolbelt",
		Insecure:    os.Getenv("TOOLBELT_OTLP_INSECURE") == "true",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry setup: %v\n", err)
	}
	defer func() {
		_ = shutdown(context.Background())
	}()

	observer, err := beltotel.NewToolObserver(
		otelapi.GetMeterProvider().Meter("toolbelt/tool"),
		otelapi.GetTracerProvider().Tracer("toolbelt/tool"),
	)
	if err == nil {
		tool.SetObserver(observer)
		defer tool.SetObserver(nil)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:   "toolbelt",
	Short: "Toolbelt agent tool registry CLI",
	Long:  "Toolbelt — a CLI for registering, validating, and invoking agent tools.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("toolbelt version %s\n", version))

	rootCmd.AddCommand(cli.NewToolsCmd())
	rootCmd.AddCommand(cli.NewInvokeCmd())
	rootCmd.AddCommand(cli.NewValidateCmd())
}
