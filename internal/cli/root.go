package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/quotelens/internal/logging"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logJSON   bool
	years     []int
	storePath string
	timeout   time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quotelens",
	Short: "quotelens - who talks about climate change, and how",
	Long: `quotelens studies how public figures talk about climate change.

It filters a quotation corpus by keyword, merges speaker aliases, joins
speakers with knowledge-base attributes, scores quotations for sentiment
and complexity, and renders aggregate tables and charts.

Stages run in order and persist their output, so each can be re-run alone:
  quotelens extract    filter the corpus into the artifact store
  quotelens speakers   resolve speaker attributes
  quotelens score      classify sentiment and measure complexity
  quotelens report     write CSV, JSON and HTML reports`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of quotelens.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quotelens %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.quotelens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")
	rootCmd.PersistentFlags().IntSliceVar(&years, "years", nil, "years to process (default: corpus.years from config)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "artifact database path (overrides store.path)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "overall command timeout (0 = none)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".quotelens"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// QUOTELENS_CLASSIFIER_API_KEY overrides classifier.api_key, and so on
	viper.SetEnvPrefix("QUOTELENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// stringKeys are the settings that environment variables and flags may override
var stringKeys = map[string]func(*model.Config) *string{
	"corpus.dir":              func(c *model.Config) *string { return &c.Corpus.Dir },
	"corpus.pattern":          func(c *model.Config) *string { return &c.Corpus.Pattern },
	"knowledge_base.entities": func(c *model.Config) *string { return &c.KnowledgeBase.Entities },
	"knowledge_base.labels":   func(c *model.Config) *string { return &c.KnowledgeBase.Labels },
	"store.path":              func(c *model.Config) *string { return &c.Store.Path },
	"classifier.provider":     func(c *model.Config) *string { return &c.Classifier.Provider },
	"classifier.model":        func(c *model.Config) *string { return &c.Classifier.Model },
	"classifier.api_key":      func(c *model.Config) *string { return &c.Classifier.APIKey },
	"classifier.base_url":     func(c *model.Config) *string { return &c.Classifier.BaseURL },
	"cache.dir":               func(c *model.Config) *string { return &c.Cache.Dir },
	"output.dir":              func(c *model.Config) *string { return &c.Output.Dir },
	"download.dir":            func(c *model.Config) *string { return &c.Download.Dir },
}

// loadConfig layers the config file, environment and flags over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	for key, field := range stringKeys {
		if v := viper.GetString(key); v != "" {
			*field(cfg) = v
		}
	}
	if viper.GetBool("verbose") {
		cfg.Output.Verbose = true
	}

	applyProviderEnv(cfg)

	if len(years) > 0 {
		cfg.Corpus.Years = years
	}
	return cfg, nil
}

// applyProviderEnv falls back to the providers' conventional variables
func applyProviderEnv(cfg *model.Config) {
	c := &cfg.Classifier
	switch strings.ToLower(c.Provider) {
	case "openai":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if c.BaseURL == "" {
			c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

// newLogger builds the stage logger from the global flags
func newLogger(command string) *logrus.Entry {
	log := logging.New(logging.Options{Verbose: verbose, JSON: logJSON})
	return log.WithField("command", command)
}
