package cmd

import (
	"github.com/emrgen/storefront/internal/config"
	"github.com/emrgen/storefront/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var httpPort string

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the storefront server",
		Run: func(cmd *cobra.Command, args []string) {
			if httpPort == "" {
				httpPort = config.LoadConfig().HTTPPort
			}

			server.NewServer(httpPort).Start()
		},
	}

	command.Flags().StringVarP(&httpPort, "port", "p", "", "http port")

	return command
}
