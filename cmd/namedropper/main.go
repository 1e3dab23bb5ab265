// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the namedropper CLI, which finds
// names of people, organizations and places in TEI and EAD documents and
// marks them up with links to DBpedia, VIAF and GeoNames.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/namedropper/internal/httputil"
	"github.com/pdiddy/namedropper/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from the log settings before any command runs.
var logger = logging.Discard()

var rootCmd = &cobra.Command{
	Use:   "namedropper",
	Short: "Recognize and tag named entities in TEI and EAD documents",
	Long: `namedropper sends the text of TEI and EAD documents to DBpedia Spotlight
and marks the people, organizations and places it recognizes with the
vocabulary's name elements, linked to DBpedia, VIAF or GeoNames.

Existing markup and whitespace are preserved. Runs are repeatable: names
that are already tagged only gain missing attributes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(loadConfig().Log, os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		httputil.Logger = l.WithPrefix("http")
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./namedropper.yaml or ~/.config/namedropper/namedropper.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json, logfmt")
	rootCmd.PersistentFlags().String("spotlight-url", "", "DBpedia Spotlight REST endpoint")
	rootCmd.PersistentFlags().Float64("confidence", 0, "Spotlight confidence threshold (default 0.4)")
	rootCmd.PersistentFlags().Int("support", 0, "Spotlight minimum support (default 20)")
	rootCmd.PersistentFlags().String("cache", "", "cross-reference cache database")

	bindFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	bindFlag("spotlight.base_url", rootCmd.PersistentFlags().Lookup("spotlight-url"))
	bindFlag("spotlight.confidence", rootCmd.PersistentFlags().Lookup("confidence"))
	bindFlag("spotlight.support", rootCmd.PersistentFlags().Lookup("support"))
	bindFlag("cache.path", rootCmd.PersistentFlags().Lookup("cache"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("namedropper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "namedropper"))
		}
	}

	viper.SetEnvPrefix("NAMEDROPPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
