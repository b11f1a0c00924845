package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version   string
	BuildTime string
	cfgFile   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "chatclient",
	Short: "Command-line client for OpenAI-style chat completion APIs",
	Long: `chatclient talks to any OpenAI-compatible chat completions endpoint.
It keeps conversations on disk, tracks token usage, and can run a
local relay that forwards requests with a single upstream key.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to the console")
	rootCmd.PersistentFlags().String("data-dir", "./data", "data directory")
	rootCmd.PersistentFlags().String("base-url", "", "API base URL")
	rootCmd.PersistentFlags().String("model", "", "model name")
	rootCmd.PersistentFlags().Duration("timeout", 0, "request timeout (e.g. 30s)")

	viper.BindPFlag("storage.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("chat.model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("api.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./data")
		viper.AddConfigPath("$HOME/.chatclient")
	}

	viper.SetEnvPrefix("chatclient")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Conventional variable names win over the prefixed ones
	viper.BindEnv("api.key", "OPENAI_API_KEY", "CHATCLIENT_API_KEY")
	viper.BindEnv("api.base_url", "OPENAI_BASE_URL", "CHATCLIENT_API_BASE_URL")
	viper.BindEnv("server.api_key", "CHATCLIENT_SERVER_API_KEY")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
