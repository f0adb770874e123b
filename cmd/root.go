package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/gitcensus/core"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/internal/iocache"
	"github.com/huangsam/gitcensus/internal/metrics"
	"github.com/huangsam/gitcensus/internal/provider"
	"github.com/huangsam/gitcensus/internal/refdata"
	"github.com/huangsam/gitcensus/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// env carries everything the core needs once setup has run.
var env *core.Env

// profilePrefix is non-empty when CPU and memory profiles were requested.
var profilePrefix string

// startProfiling starts CPU profiling if enabled.
func startProfiling() error {
	if profilePrefix == "" {
		return nil
	}
	cpuFile, err := os.Create(profilePrefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profilePrefix, profilePrefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if profilePrefix == "" {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profilePrefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "gitcensus",
	Short: "Report who contributes to a GitLab or local set of repositories.",
	Long: `Gitcensus collects commit history across projects, resolves contributor identities,
labels them internal or external and reports commit activity by user, project and time.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		contract.LogWarn("Cannot load .env file", err)
	}

	setConfigFile()

	viper.SetEnvPrefix("GITCENSUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("gitlab-token", "GITCENSUS_GITLAB_TOKEN", contract.GitLabTokenEnv); err != nil {
		contract.LogFatal("Error binding gitlab-token", err)
	}

	viper.SetDefault("provider", schema.GitLabProvider)
	viper.SetDefault("gitlab-url", contract.DefaultGitLabURL)
	viper.SetDefault("interval", contract.DefaultIntervalDays)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("output-dir", ".")
	viper.SetDefault("snapshot-backend", schema.FileBackend)
	viper.SetDefault("runs-backend", schema.NoneBackend)
	viper.SetDefault("color", "yes")
}

// setConfigFile points viper at --config or the default .gitcensus.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".gitcensus")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// resolveConfig merges file, env and flags into the validated global cfg.
func resolveConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	color.NoColor = !cfg.UseColors
	return nil
}

// sharedSetup validates config, opens the stores and builds the core environment.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	profilePrefix = viper.GetString("profile")
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	if err := resolveConfig(); err != nil {
		return err
	}

	if err := iocache.InitStores(cfg.SnapshotBackend, cfg.SnapshotConnect, cfg.RunsBackend, cfg.RunsConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	tables, err := refdata.Load(cfg.ReferenceData)
	if err != nil {
		return err
	}

	env = &core.Env{
		Config:      cfg,
		Stores:      iocache.Manager,
		Tables:      tables,
		NewProvider: provider.New,
		Metrics:     metrics.NewRecorder(cfg.MetricsFile != ""),
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// tablesSetup loads config and reference data only. Lookup commands never touch storage.
func tablesSetup(_ *cobra.Command, _ []string) error {
	if err := resolveConfig(); err != nil {
		return err
	}
	tables, err := refdata.Load(cfg.ReferenceData)
	if err != nil {
		return err
	}
	env = &core.Env{Config: cfg, Tables: tables}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}
