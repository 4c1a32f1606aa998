package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/releve-converter/internal/buildinfo"
	"github.com/insightdelivered/releve-converter/internal/categorizer"
	"github.com/insightdelivered/releve-converter/internal/config"
	"github.com/insightdelivered/releve-converter/internal/logger"
)

// runtime is the state shared by all subcommands once flags are parsed.
type runtime struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:     "releve",
		Short:   "Convert bank statement PDFs into categorized CSV",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&rt.configPath, "config", "", "path to releve.yaml")
	rootCmd.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newExtractCommand(rt))
	rootCmd.AddCommand(newServeCommand(rt))
	rootCmd.AddCommand(newRulesCommand(rt))
	rootCmd.AddCommand(newConfigCommand(rt))

	return rootCmd
}

// setup resolves the configuration: defaults, then the YAML file, then
// .env and RELEVE_* variables. Subcommand flags are applied afterwards.
func (rt *runtime) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if rt.configPath != "" {
		loaded, err := config.Load(rt.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if rt.logLevel != "" {
		cfg.Log.Level = rt.logLevel
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}

	rt.cfg = cfg
	rt.log = log
	return nil
}

// rules returns the category rules from the configured file, or the
// built-in table.
func (rt *runtime) rules() (categorizer.RuleSet, error) {
	if rt.cfg.RulesFile == "" {
		return categorizer.DefaultRules(), nil
	}
	rs, err := categorizer.LoadRules(rt.cfg.RulesFile)
	if err != nil {
		return categorizer.RuleSet{}, err
	}
	rt.log.Debug().Str("rules_file", rt.cfg.RulesFile).Int("rules", len(rs.Rules)).Msg("loaded category rules")
	return rs, nil
}
