package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the progress of an unfinished batch. Output files are kept",
	Run: func(_ *cobra.Command, _ []string) {
		reset()
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func reset() {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("opening progress store", zap.Error(err))
	}
	defer closeStore(store, logger)

	if err := store.Clear(ctx); err != nil {
		logger.Fatal("clearing progress", zap.Error(err))
	}

	logger.Info("progress cleared")
}
