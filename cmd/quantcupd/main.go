// Command quantcupd is a diagnostic entry point for the lock-free order
// book, useful for smoke testing and ad hoc benchmarking.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quantcupd",
		Short: "Diagnostics for the lock-free limit order book",
	}

	viper.SetEnvPrefix("QUANTCUPD")
	viper.AutomaticEnv()

	root.AddCommand(newRunCmd())
	root.AddCommand(newBenchCmd())
	root.AddCommand(newServeCmd())
	return root
}

func newLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
