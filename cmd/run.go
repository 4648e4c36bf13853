package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/talent-scout/internal/linkedin"
	"github.com/spigell/talent-scout/internal/output"
	"github.com/spigell/talent-scout/internal/pipeline"
	"github.com/spigell/talent-scout/internal/progress"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, extract and score profiles, resuming an interrupted batch when one exists",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("search", "s", "", "people search term")
	runCmd.Flags().IntP("limit", "l", 0, "maximum number of profiles to process")
	runCmd.Flags().Float64P("min-experience", "m", 0, "minimum total years of experience (0 for no filter)")
	runCmd.Flags().String("job-description-file", "", "file with the job description to match against")
	runCmd.Flags().String("urls-file", "", "file with profile urls, one per line. Skips the search")
	runCmd.Flags().BoolP("auto-approve", "y", false, "resume a previous batch without asking")
	runCmd.Flags().Bool("fresh", false, "discard a previous batch and start a new one")

	viper.BindPFlag("search.term", runCmd.Flags().Lookup("search"))
	viper.BindPFlag("search.limit", runCmd.Flags().Lookup("limit"))
	viper.BindPFlag("search.min-experience", runCmd.Flags().Lookup("min-experience"))
	viper.BindPFlag("search.job-description-file", runCmd.Flags().Lookup("job-description-file"))
	viper.BindPFlag("search.urls-file", runCmd.Flags().Lookup("urls-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the talent-scout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if err := config.Pipeline.Validate(); err != nil {
		logger.Fatal("invalid pipeline configuration", zap.Error(err))
	}

	sinks, err := output.Open(config.Output.Dir, config.Output.Files)
	if err != nil {
		logger.Fatal("opening output files", zap.Error(err))
	}

	store, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("opening progress store", zap.Error(err))
	}
	defer closeStore(store, logger)

	state, err := resumeOrDiscard(ctx, cmd, store, logger)
	if err != nil {
		logger.Fatal("checking previous progress", zap.Error(err))
	}

	fetcher, err := newFetcher(ctx, config, logger)
	if err != nil {
		logger.Fatal("starting the page fetcher", zap.Error(err))
	}
	defer fetcher.Close()

	if state == nil {
		state, err = newBatch(ctx, config, fetcher, logger)
		if err != nil {
			logger.Fatal("preparing a new batch", zap.Error(err))
		}

		if state.Total() == 0 {
			logger.Info("exiting", zap.String("reason", "no profile urls found"))
			return
		}

		if err := store.Save(ctx, state); err != nil {
			logger.Fatal("saving initial progress", zap.Error(err))
		}
	}

	extractor, matcher, err := newAI(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating ai clients", zap.Error(err))
	}

	p, err := pipeline.New(config.Pipeline, pipeline.Deps{
		Fetcher:   fetcher,
		Extractor: extractor,
		Matcher:   matcher,
		Store:     store,
		Sinks:     sinks,
		Gates:     newGates(config.Filters),
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("creating the pipeline", zap.Error(err))
	}

	summary, err := p.Run(ctx, state)
	if err != nil {
		if errors.Is(err, pipeline.ErrInterrupted) {
			logger.Warn("progress saved, run again to resume",
				zap.String("run_id", state.RunID),
				zap.Int("completed", len(state.Completed())),
				zap.Int("total", state.Total()),
			)
			return
		}
		logger.Fatal("batch failed", zap.Error(err))
	}

	logger.Info("results saved", summary.Fields()...)
}

// resumeOrDiscard returns the stored batch when the user wants to continue it.
// A batch that is not resumed is cleared.
func resumeOrDiscard(ctx context.Context, cmd *cobra.Command, store progress.Store, logger *zap.Logger) (*progress.BatchState, error) {
	state, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}

	fresh, _ := cmd.Flags().GetBool("fresh")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	resume := !fresh && !state.Finished()
	if resume && !autoApprove {
		printBatch(os.Stdout, state)
		resume, err = confirm("Resume from previous run?")
		if err != nil {
			return nil, err
		}
	}

	if resume {
		logger.Info("resuming previous run",
			zap.String("run_id", state.RunID),
			zap.Int("completed", len(state.Completed())),
			zap.Int("remaining", len(state.Remaining())),
		)
		return state, nil
	}

	logger.Info("discarding previous run", zap.String("run_id", state.RunID))
	if err := store.Clear(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

// newBatch gathers the batch parameters and the profile urls to process.
func newBatch(ctx context.Context, config *Config, source linkedin.HTMLSource, logger *zap.Logger) (*progress.BatchState, error) {
	params, err := gatherParams(config)
	if err != nil {
		return nil, err
	}

	urls, err := collectURLs(ctx, config, source, params, logger)
	if err != nil {
		return nil, err
	}

	state := progress.New(params, urls)
	logger.Info("created a new batch",
		zap.String("run_id", state.RunID),
		zap.String("search_term", params.SearchTerm),
		zap.Int("urls", state.Total()),
	)
	return state, nil
}

func collectURLs(ctx context.Context, config *Config, source linkedin.HTMLSource, params progress.Params, logger *zap.Logger) ([]string, error) {
	if config.Search.URLsFile != "" {
		f, err := os.Open(config.Search.URLsFile)
		if err != nil {
			return nil, fmt.Errorf("open urls file: %w", err)
		}
		defer f.Close()

		urls, err := linkedin.ReadURLs(f, params.ProfileLimit)
		if err != nil {
			return nil, err
		}
		logger.Info("read profile urls from file",
			zap.String("file", config.Search.URLsFile),
			zap.Int("count", len(urls)),
		)
		return urls, nil
	}

	discoverer := linkedin.NewDiscoverer(source, config.Discovery, logger)
	return discoverer.Discover(ctx, params.SearchTerm, params.ProfileLimit)
}
