package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alicoding/vacation-tracker/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vacationd",
	Short: "Vacation tracker server and tools",
	Long: `vacationd tracks employee vacation bookings against an annual
allowance, counting only working days (weekends and public holidays are
free). It serves a REST API and can push bookings to Google Calendar.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., ~/.vacationd, /etc/vacationd)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedHolidaysCmd)
	rootCmd.AddCommand(syncCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
