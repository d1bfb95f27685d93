package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "storefront"
)

var Token string

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	rootCmd.AddCommand(contextCommand)
	contextCommand.AddCommand(setContextCommand())
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())
}

type Context struct {
	Token string `json:"token"`
}

// saves the context info to the config file under ./.tmp
func setContextCommand() *cobra.Command {
	var token string
	command := &cobra.Command{
		Use:   "set",
		Short: "set context",
		Run: func(cmd *cobra.Command, args []string) {
			if token == "" {
				color.Red(`missing: --token`)
				return
			}

			writeContext(Context{
				Token: token,
			})
			fmt.Println("context saved")
		},
	}

	command.Flags().StringVarP(&token, "token", "t", "", "token")

	return command
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := readContext()
			if cfg.Token == "" {
				color.Yellow("no context set")
				return
			}

			printField("Token", cfg.Token)
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			writeContext(Context{})
			fmt.Println("context reset")
		},
	}

	return command
}

func writeContext(context Context) {
	viper.SetConfigName(configFileName)
	viper.AddConfigPath("./.tmp")
	viper.SetConfigType("yml")
	viper.Set("context", context)

	if err := viper.WriteConfig(); err != nil {
		fmt.Println("error writing config file: ", err)
	}
}

func bindContextFlags(command *cobra.Command) {
	command.Flags().StringVarP(&Token, "token", "t", "", "token")
}

// contextToken returns the token from the flag, falling back to the saved
// context file.
func contextToken() string {
	if Token != "" {
		return Token
	}

	cfg := readContext()
	Token = cfg.Token

	return Token
}

func readContext() Context {
	var ctx Context

	// create file if it doesn't exist
	if _, err := os.Stat("./.tmp/" + configFileName + ".yml"); os.IsNotExist(err) {
		file, err := os.Create("./.tmp/" + configFileName + ".yml")
		if err != nil {
			fmt.Println("error creating config file: ", err)
		}
		err = file.Close()
		if err != nil {
			panic(err)
		}
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath("./.tmp")
	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("error reading config file: ", err)
	}

	if err := viper.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error unmarshalling config file: ", err)
	}

	return ctx
}
