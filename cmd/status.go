package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the progress of an unfinished batch",
	Run: func(_ *cobra.Command, _ []string) {
		status()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func status() {
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

	state, err := store.Load(ctx)
	if err != nil {
		logger.Fatal("loading progress", zap.Error(err))
	}

	if state == nil {
		fmt.Println("No unfinished batch.")
		return
	}

	printBatch(os.Stdout, state)
}
