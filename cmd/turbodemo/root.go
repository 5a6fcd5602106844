package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/turbo"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "turbodemo",
	Short: "Run float32 array kernels on the GPU",
	Long: `turbodemo exercises the turbo library: it allocates a float buffer,
runs a WGSL kernel body over it through the render pipeline, and prints
or visualizes the result.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
		turbo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
