package cmd

import (
	"errors"
	"log"
	"path/filepath"

	"github.com/spigell/talent-scout/internal/ai/gemini"
	"github.com/spigell/talent-scout/internal/linkedin"
	"github.com/spigell/talent-scout/internal/logger"
	"github.com/spigell/talent-scout/internal/output"
	"github.com/spigell/talent-scout/internal/pipeline"
	"github.com/spigell/talent-scout/internal/progress"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "talent-scout"
)

type Config struct {
	Search    *SearchConfig            `mapstructure:"search"`
	Pipeline  pipeline.Config          `mapstructure:"pipeline"`
	Progress  progress.Config          `mapstructure:"progress"`
	Output    *OutputConfig            `mapstructure:"output"`
	Fetcher   *FetcherConfig           `mapstructure:"fetcher"`
	Discovery linkedin.DiscoveryConfig `mapstructure:"discovery"`
	Filters   *FiltersConfig           `mapstructure:"filters"`
	AI        *AIConfig                `mapstructure:"ai"`
}

type SearchConfig struct {
	Term               string  `mapstructure:"term"`
	Limit              int     `mapstructure:"limit"`
	MinExperience      float64 `mapstructure:"min-experience"`
	JobDescription     string  `mapstructure:"job-description"`
	JobDescriptionFile string  `mapstructure:"job-description-file"`
	URLsFile           string  `mapstructure:"urls-file"`
}

type OutputConfig struct {
	Dir   string       `mapstructure:"dir"`
	Files output.Paths `mapstructure:"files"`
}

type FetcherConfig struct {
	// Kind is either "browser" or "http".
	Kind       string                 `mapstructure:"kind"`
	Browser    linkedin.BrowserConfig `mapstructure:"browser"`
	UserAgent  string                 `mapstructure:"user-agent"`
	CookieFile string                 `mapstructure:"cookie-file"`
	// Markdown hands the extractor a markdown rendering instead of plain text. http only.
	Markdown bool `mapstructure:"markdown"`
}

type FiltersConfig struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	OpenToWorkOnly   bool     `mapstructure:"open-to-work-only"`
	// Disable lists optional gates to switch off by name.
	Disable []string `mapstructure:"disable"`
}

type AIConfig struct {
	Provider      string         `mapstructure:"provider"`
	MaxInputChars int            `mapstructure:"max-input-chars"`
	Gemini        *gemini.Config `mapstructure:"gemini"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talent-scout collects professional profiles, extracts them with an LLM and scores them against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talent-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func setDefaults() {
	defaults := pipeline.DefaultConfig()
	viper.SetDefault("pipeline.match-threshold", defaults.MatchThreshold)
	viper.SetDefault("pipeline.min-experience", defaults.MinExperience)
	viper.SetDefault("pipeline.delay-min", defaults.DelayMin)
	viper.SetDefault("pipeline.delay-max", defaults.DelayMax)
	viper.SetDefault("pipeline.max-retries-per-profile", defaults.MaxRetriesPerProfile)

	viper.SetDefault("progress.backend", progress.BackendFile)
	viper.SetDefault("output.dir", output.DefaultDir)
	viper.SetDefault("fetcher.kind", "browser")
	viper.SetDefault("discovery.max-pages", linkedin.DefaultMaxPages)
	viper.SetDefault("discovery.per-page", linkedin.DefaultPerPage)
	viper.SetDefault("discovery.page-delay", linkedin.DefaultPageDelay)
	viper.SetDefault("ai.provider", gemini.Provider)
	viper.SetDefault("ai.max-input-chars", gemini.DefaultMaxInputChars)
}

func initConfig() {
	// The version command needs no configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Defaults and flags are enough when no config file exists; a broken one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func newLogger() *zap.Logger {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  viper.GetString("log-file"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return logger
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Output == nil {
		config.Output = &OutputConfig{}
	}
	if config.Fetcher == nil {
		config.Fetcher = &FetcherConfig{}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &gemini.Config{}
	}

	return config, nil
}

// progressConfig places the progress snapshot inside the output directory unless configured otherwise.
func (c *Config) progressConfig() progress.Config {
	cfg := c.Progress
	if cfg.Path != "" {
		return cfg
	}

	name := progress.DefaultFile
	if cfg.Backend == progress.BackendSQLite {
		name = progress.DefaultDatabase
	}
	dir := c.Output.Dir
	if dir == "" {
		dir = output.DefaultDir
	}
	cfg.Path = filepath.Join(dir, name)
	return cfg
}
