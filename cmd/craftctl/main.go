package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/craftops/craftctl/internal/config"
	"github.com/craftops/craftctl/internal/debug"
	"github.com/craftops/craftctl/internal/mc"
	"github.com/craftops/craftctl/internal/rcon"
	"github.com/craftops/craftctl/internal/telemetry"
)

var (
	cfgFile     string
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	// Effective configuration for this invocation, resolved in
	// PersistentPreRunE from defaults, config file, env, and flags.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "craftctl",
	Short: "craftctl - Minecraft server remote administration",
	Long: `Remote console administration for Minecraft servers over RCON.

Commands run with per-attempt timeouts and automatic retry with exponential
backoff. Large fills are partitioned into protocol-safe chunks automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.Shutdown(context.Background())
	},
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("craftctl version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	// Assigned here rather than in the composite literal because the closure
	// references rootCmd, which would otherwise be an initialization cycle.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v && cmd == rootCmd {
			return nil
		}

		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)

		if err := telemetry.Init(cmd.Context(), "craftctl", Version); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry init failed: %v\n", err)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		applyViperOverrides()
		return nil
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default: craftctl.{yaml,yml,toml} in working directory)")
	rootCmd.PersistentFlags().String("host", "", "Server host (default: localhost)")
	rootCmd.PersistentFlags().Int("port", 0, "RCON port (default: 25575)")
	rootCmd.PersistentFlags().String("password", "", "RCON password (default: $CRAFTCTL_RCON_PASSWORD, prompt)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	// Flags win over env, env over the config file. AutomaticEnv lets
	// CRAFTCTL_HOST etc. override without flag spelling.
	viper.SetEnvPrefix("CRAFTCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"host", "port", "password"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// applyViperOverrides folds flag and env values over the loaded config.
func applyViperOverrides() {
	if host := viper.GetString("host"); host != "" {
		cfg.Host = host
	}
	if port := viper.GetInt("port"); port > 0 {
		cfg.Port = port
	}
	if pw := viper.GetString("password"); pw != "" {
		cfg.Password = pw
	}
}

// newExecutor builds the command executor for the configured endpoint,
// prompting for the password when none is configured.
func newExecutor() (*mc.Executor, error) {
	if cfg.Password == "" {
		pw, err := promptPassword()
		if err != nil {
			return nil, err
		}
		cfg.Password = pw
	}

	dial := mc.Dialer(cfg.Addr(), cfg.Password, rcon.Options{
		DialTimeout: cfg.DialTimeout.Std(),
	})
	return mc.NewExecutor(dial), nil
}

// promptPassword reads the RCON password from the terminal without echo.
func promptPassword() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no RCON password configured; set it in the config file, $CRAFTCTL_RCON_PASSWORD, or --password")
	}
	fmt.Fprintf(os.Stderr, "RCON password for %s: ", cfg.Addr())
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pwBytes), nil
}

// execDefaults are the per-command options derived from configuration.
func execDefaults() mc.ExecOptions {
	return mc.ExecOptions{
		Timeout:     cfg.CommandTimeout.Std(),
		MaxAttempts: cfg.MaxAttempts,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatalError(err)
	}
}
