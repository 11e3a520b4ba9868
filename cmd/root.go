package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/ai"
	"github.com/spigell/group-recommender/internal/embedcache"
	"github.com/spigell/group-recommender/internal/logger"
	"github.com/spigell/group-recommender/internal/matching"
)

const (
	app = "group-recommender"
)

type Config struct {
	Store     *StoreConfig     `mapstructure:"store"`
	Scoring   *ScoringConfig   `mapstructure:"scoring"`
	Recommend *RecommendConfig `mapstructure:"recommend"`
	Embedding *EmbeddingConfig `mapstructure:"embedding"`
	Metrics   *MetricsConfig   `mapstructure:"metrics"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type ScoringConfig struct {
	Mode string `mapstructure:"mode"`
}

type RecommendConfig struct {
	Limit       int    `mapstructure:"limit"`
	OpenOnly    bool   `mapstructure:"open-only"`
	ExcludeFile string `mapstructure:"exclude-file"`
	// RequirePositiveScore overrides the default policy of the scoring mode when set.
	RequirePositiveScore *bool `mapstructure:"require-positive-score"`
}

type EmbeddingConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	Cache    *CacheConfig  `mapstructure:"cache"`
}

type GeminiConfig struct {
	APIKeyFile        string  `mapstructure:"api-key-file"`
	Model             string  `mapstructure:"model"`
	Dimensions        int     `mapstructure:"dimensions"`
	TaskType          string  `mapstructure:"task-type"`
	MaxRetries        int     `mapstructure:"max-retries"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
}

type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	Path     string        `mapstructure:"path"`
	RedisURL string        `mapstructure:"redis-url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "group-recommender matches users with interest groups and ranks groups by relevance",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("embedding.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("store.path", "GROUP_RECOMMENDER_STORE"); err != nil {
		log.Fatalf("binding GROUP_RECOMMENDER_STORE environment variable: %v", err)
	}

	viper.SetDefault("store.path", app+".json")
	viper.SetDefault("scoring.mode", string(matching.ModeSemantic))
	viper.SetDefault("recommend.limit", 10)
	viper.SetDefault("embedding.provider", ai.ProviderLexical)
	viper.SetDefault("embedding.gemini.max-retries", 3)
	viper.SetDefault("embedding.cache.backend", embedcache.BackendMemory)
	viper.SetDefault("embedding.cache.path", "."+app+"-cache")
	viper.SetDefault("embedding.cache.ttl", 30*24*time.Hour)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is group-recommender.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("store", "", "path to the json record store")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}
