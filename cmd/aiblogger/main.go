package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hasibx0/ai-blogger-bot/internal/auth"
	"github.com/hasibx0/ai-blogger-bot/internal/config"
	"github.com/hasibx0/ai-blogger-bot/internal/logging"
	"github.com/hasibx0/ai-blogger-bot/internal/pipeline"
	"github.com/hasibx0/ai-blogger-bot/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	envFile    string
	cfg        *config.Config
	logger     *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "aiblogger",
	Short:   "Generate and publish one AI blog post",
	Long:    "aiblogger gathers context on a topic, generates an article, illustrates it and delivers it to a blog by email or the Blogger API.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, _ = logging.WithRunID(logging.New(level))
		slog.SetDefault(logger)
		if path != "" {
			logger.Debug("loaded config", "path", path)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context(), false)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file with secrets")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(authorizeCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("aiblogger", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/aiblogger/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to choose the topic, generation provider and delivery method.")
		fmt.Println("Secrets are read from the environment or a .env file.")
		return nil
	},
}

// --- run command ---

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once: gather -> generate -> image -> assemble -> deliver",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context(), dryRun)
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the post and print it without delivering")
}

func runPipeline(ctx context.Context, dry bool) error {
	secrets, err := resolveSecrets(!dry)
	if err != nil {
		return err
	}

	pipe, err := pipeline.FromConfig(ctx, cfg, secrets, !dry, logger)
	if err != nil {
		return err
	}

	if dry {
		result := pipe.Prepare(ctx)
		printSteps(result.Steps)
		fmt.Printf("\nSubject: %s\n\n%s\n", result.Subject, result.Post.HTML)
		return nil
	}

	result, err := pipe.Run(ctx)
	if result != nil {
		printSteps(result.Steps)
	}
	if err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	fmt.Printf("\nPosted %q via %s.\n", result.Topic, result.Confirmation.Method)
	if result.Confirmation.URL != "" {
		fmt.Println(result.Confirmation.URL)
	}
	return nil
}

// resolveSecrets checks the environment before any network activity. Dry
// runs do not need delivery or notification credentials.
func resolveSecrets(withDelivery bool) (*config.Secrets, error) {
	c := *cfg
	if !withDelivery {
		c.Delivery.Method = ""
		c.Notify.Telegram.Enabled = false
	}
	secrets, err := c.ResolveSecrets(os.Getenv)
	if err != nil {
		var missing *config.MissingError
		if errors.As(err, &missing) {
			logger.Error("configuration incomplete", "missing", missing.Names)
		}
		return nil, err
	}
	return secrets, nil
}

func printSteps(steps []pipeline.StepResult) {
	for i, step := range steps {
		fmt.Printf("\nStep %d/6: %s\n", i+1, step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}
}

// --- preview command ---

var previewPort int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate a post and serve it locally without delivering",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		secrets, err := resolveSecrets(false)
		if err != nil {
			return err
		}
		pipe, err := pipeline.FromConfig(ctx, cfg, secrets, false, logger)
		if err != nil {
			return err
		}

		result := pipe.Prepare(ctx)
		printSteps(result.Steps)

		port := previewPort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("\nPreview at http://127.0.0.1:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(ctx, result.Post, result.Subject, port, logger)
	},
}

func init() {
	previewCmd.Flags().IntVarP(&previewPort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- authorize command ---

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Authorize Blogger API access and store the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := cfg.Delivery.Blogger
		secretFile := os.Getenv(b.ClientSecretFileEnv)
		if secretFile == "" {
			return &config.MissingError{Names: []string{b.ClientSecretFileEnv}}
		}
		tokenFile := os.Getenv(b.TokenFileEnv)
		if tokenFile == "" {
			tokenFile = config.DefaultTokenFile()
		}

		oauthCfg, err := auth.LoadClientConfig(secretFile, b.Scopes...)
		if err != nil {
			return err
		}
		flow := &auth.Interactive{Config: oauthCfg, Path: tokenFile, Listen: b.CallbackAddr}
		if _, err := flow.Authorize(cmd.Context()); err != nil {
			return fmt.Errorf("authorizing: %w", err)
		}
		fmt.Println("Authorization complete. Set delivery.method to blogger to publish directly.")
		return nil
	},
}
