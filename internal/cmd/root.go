// Package cmd provides the command-line interface for petcrawl.
// It handles command parsing, configuration loading and pipeline wiring.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hclam/petcrawl/internal/config"
	"github.com/hclam/petcrawl/internal/logging"
	"github.com/hclam/petcrawl/internal/scraper"
	"github.com/hclam/petcrawl/internal/server"
	"github.com/hclam/petcrawl/internal/storage"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "petcrawl",
	Short: "Resilient batch scraper for adoptable-animal records",
	Long: `Petcrawl collects adoptable-animal records from a shelter site.

It discovers record identifiers, fetches detail pages under strict
politeness constraints, extracts structured fields from inconsistently
formatted text, and persists schema-complete records one resumable
batch at a time.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./petcrawl.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Optional log file path (rotated by size)")

	pf := rootCmd.PersistentFlags()
	pf.String("base-url", "", "Scheme and host of the shelter site")
	pf.IntP("batch-size", "b", 10, "Identifiers processed per batch")
	pf.DurationP("request-delay", "r", 1*time.Second, "Delay between detail-page fetches")
	pf.Duration("batch-delay", 5*time.Second, "Delay between batches in run mode")
	pf.DurationP("timeout", "t", 25*time.Second, "HTTP request timeout per attempt")
	pf.Int("max-retries", 3, "Fetch attempts per URL before falling back")
	pf.Int("min-body-bytes", 500, "Minimum acceptable response body size")
	pf.Duration("session-ttl", 30*time.Minute, "Rebuild the session after this elapses")
	pf.StringSlice("seed-identifiers", nil, "Known-valid identifiers used when discovery fails")
	pf.Bool("ignore-robots", false, "Ignore robots.txt rules")
	pf.StringP("user-agent", "u", "PetCrawl/1.0", "HTTP User-Agent header")
	pf.StringP("database", "d", "./petcrawl.db", "Path to SQLite database file")
	pf.String("listen", ":8090", "Listen address for the HTTP interface")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"base_url", "base-url"},
		{"batch_size", "batch-size"},
		{"request_delay", "request-delay"},
		{"batch_delay", "batch-delay"},
		{"request_timeout", "timeout"},
		{"max_retries", "max-retries"},
		{"min_body_bytes", "min-body-bytes"},
		{"session_ttl", "session-ttl"},
		{"seed_identifiers", "seed-identifiers"},
		{"user_agent", "user-agent"},
		{"database_path", "database"},
		{"listen_addr", "listen"},
	}
	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, pf.Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}

	rootCmd.AddCommand(serveCmd, runCmd, configCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("petcrawl")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers viper values over defaults and validates the result.
func loadConfig(cmd *cobra.Command) (*config.ScrapeConfig, error) {
	cfg := config.DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if ignore, _ := cmd.Flags().GetBool("ignore-robots"); ignore {
		cfg.RespectRobots = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setupLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	file, _ := cmd.Flags().GetString("log-file")

	opts := logging.DefaultOptions()
	opts.Level = logging.ParseLevel(level)
	opts.FilePath = file
	return logging.SetDefault(opts)
}

// buildOrchestrator wires storage and pipeline from configuration.
func buildOrchestrator(cfg *config.ScrapeConfig) (*scraper.Orchestrator, *storage.PetStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewPetStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return scraper.NewOrchestrator(cfg, store), store, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the batch pipeline over a JSON HTTP interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		orch, store, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		defer orch.Close()

		srv := server.New(cfg.ListenAddr, orch)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process batches to exhaustion and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		orch, store, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		defer orch.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		totalRecords, totalSynthetic := 0, 0
		for {
			result, err := orch.NextBatch(ctx)
			if err != nil {
				return err
			}

			totalRecords += len(result.Records)
			totalSynthetic += result.Synthetic

			if !result.Progress.HasMore {
				fmt.Printf("Done: %d batches, %d records (%d synthetic), %d stored\n",
					result.Progress.CurrentBatch, totalRecords, totalSynthetic, result.StoreTotal)
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.BatchDelay):
			}
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the effective configuration in YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
		}

		fmt.Printf("# Effective petcrawl configuration\n")
		fmt.Printf("# Generated at: %s\n", time.Now().Format(time.RFC3339))
		fmt.Printf("# Sources: flags > PC_* environment > petcrawl.yml > defaults\n\n")
		fmt.Print(string(yamlData))
		return nil
	},
}
