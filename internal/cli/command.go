package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codeberg.org/snonux/ordertrans/internal"
	"codeberg.org/snonux/ordertrans/internal/config"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ordertrans",
		Short: "Credit review order translator",
		Long: `ordertrans translates credit review orders into English.

It reads the review sheet of a Google spreadsheet (or a local .xlsx
workbook), keeps the orders reviewed on or after the cutoff date,
translates the review details, call content and review advice, and
rewrites the English destination sheet in batches.

Examples:
  ordertrans --cutoff 2025-06-20             # Translate orders since June 20th
  ordertrans --cutoff 2025-06-20 --dry-run   # Only count the matching orders
  ordertrans --backend xlsx --xlsx orders.xlsx
  ordertrans --archive                       # Snapshot the destination sheet
  ordertrans --history 10                    # Show the last 10 runs`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.ordertrans.toml)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	// Local flags
	cmd.Flags().StringVarP(&flags.Cutoff, "cutoff", "c", "", "Process orders reviewed on or after this date (default: today)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Resolve and filter orders without translating or writing")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Copy the destination sheet to a timestamped worksheet and exit")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI chat models for the current API key")
	cmd.Flags().IntVar(&flags.History, "history", 0, "Show the last N recorded runs and exit")
	cmd.Flags().BoolVar(&flags.ShowConfig, "show-config", false, "Print the effective configuration with secrets masked and exit")

	// Backend flags
	cmd.Flags().StringVar(&flags.Backend, "backend", "", "Spreadsheet backend: google or xlsx")
	cmd.Flags().StringVar(&flags.XLSXPath, "xlsx", "", "Workbook path for the xlsx backend")
	cmd.Flags().StringVar(&flags.Provider, "provider", "", "Translation provider: openai or gemini")
	cmd.Flags().StringVar(&flags.Model, "model", "", "OpenAI chat model used for translation")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("sheets.backend", cmd.Flags().Lookup("backend"))
	viper.BindPFlag("sheets.xlsx_path", cmd.Flags().Lookup("xlsx"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("model"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".ordertrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("toml")
		viper.SetConfigName(".ordertrans")
	}

	// Environment variables
	viper.SetEnvPrefix("ORDERTRANS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
	}
}

// LoadConfig builds the Config from the global viper instance
func LoadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// GetOpenAIKey retrieves the OpenAI API key. An enabled key pool wins, like
// in translation runs; otherwise the environment, then the config file.
func GetOpenAIKey() string {
	if viper.GetBool("api_key_pool.enabled") {
		for _, key := range viper.GetStringSlice("api_key_pool.keys") {
			if key = strings.TrimSpace(key); key != "" {
				return key
			}
		}
	}

	// Then the environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.api_key")
}

// NewLogger builds the JSON production logger, at debug level when verbose
func NewLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
