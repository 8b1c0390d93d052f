// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-crawler CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-crawler/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is initialized in PersistentPreRunE and shared by subcommands.
var logger *zap.Logger

// rootCmd is the base command for the paper-crawler CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-crawler",
	Short: "Crawl arXiv and bioRxiv for papers and download their PDFs",
	Long: `paper-crawler discovers papers on arXiv and bioRxiv by keyword or by
subject category, skips papers it has already downloaded, balances
category representation under a global cap, and downloads the PDFs with
YAML metadata sidecars.

Discovery, selection, and download run as one crawl; papers and
categories inspect the local state.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := logging.New(verbose)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-crawler.yaml or ~/.config/paper-crawler/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-crawler")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-crawler"))
		}
	}

	viper.SetEnvPrefix("PAPER_CRAWLER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
