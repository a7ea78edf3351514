// Command dictctl learns a category dictionary from labelled procurement rows and classifies new rows offline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scope3-dict/internal/config"
)

var (
	cfgFile string
	cfg     config.Config
	logger  zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "dictctl",
		Short: "Keyword dictionary classifier for procurement line items",
		Long: `dictctl learns keyword dictionary entries from historically labelled rows
(item, supplier, amount, category label) and classifies new rows against them.

Files are .xlsx/.xls (first sheet) or .csv; the first row is a header.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./scope3.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("source-marker", "", "substring a training label must contain (empty accepts any label)")
	rootCmd.PersistentFlags().StringSlice("stopwords", nil, "stopwords for keyword extraction")
	rootCmd.PersistentFlags().Bool("no-progress", false, "hide progress bars")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("learn.source_marker", rootCmd.PersistentFlags().Lookup("source-marker"))
	_ = viper.BindPFlag("extract.stopwords", rootCmd.PersistentFlags().Lookup("stopwords"))
	_ = viper.BindPFlag("cli.no_progress", rootCmd.PersistentFlags().Lookup("no-progress"))

	rootCmd.AddCommand(learnCmd())
	rootCmd.AddCommand(classifyCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	config.SetDefaults(v)
	// CLI пишет логи только в stderr и по умолчанию тише сервера
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "warn")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("scope3")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg = config.FromViper(v)
	logger = config.SetupLogger(cfg, os.Stderr)
	return nil
}
