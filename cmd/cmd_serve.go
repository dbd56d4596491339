// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/jcodagnone/addrlookup/server"
	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the lookup pipeline over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		addr := listenAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}

		log.Printf("listening on %s", addr)

		return server.NewServer(svc).Run(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "address to listen on (default: listen_addr)")
}
