package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "storefront page management tool",
	Example: `storefront create -s <store-id> -l <slug> -p <page-type>
storefront get -d <page-id>
storefront list -s <store-id>
storefront publish -d <page-id>
storefront rollback -d <page-id> -v <version>
storefront versions -d <page-id>
storefront unpublish -d <page-id>
storefront export -d <page-id> -o <file>
storefront import -s <store-id> -l <slug> -i <file>`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serveCmd())
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
