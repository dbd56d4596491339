// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/addrlookup/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var (
	cfgFile string
	noCache bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "addrlookup",
	Short: "resolves company names to standardized postal addresses",
	Long: `
addrlookup turns a company name, optionally qualified by a "City, Country"
site hint, into a geocoded postal address. Results come from a local cache,
the address registry or the Google Maps Geocoding API, in that order.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.Load(viper.GetViper(), cfgFile)
		if noCache {
			cfg.EnableCache = false
		}

		return err
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.addrlookup/config.yaml)")
	rootCmd.PersistentFlags().Bool("http-trace", false, "dump outgoing HTTP requests to stderr")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "always query the registry and the provider")
	_ = viper.BindPFlag("http_trace", rootCmd.PersistentFlags().Lookup("http-trace"))
}
