package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	apiURL     string
	userID     string
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "autopilot",
	Short: "WP SEO Autopilot CLI - Manage content schedules",
	Long: `The autopilot CLI manages recurring content schedules, the publication
queue, and activity history from the command line.

Examples:
  autopilot init my-schedule.json
  autopilot validate my-schedule.json
  autopilot deploy my-schedule.json
  autopilot list
  autopilot run <schedule-id>
  autopilot queue --status failed`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initConfig()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.autopilot-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "Autopilot API URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user-id", "", "Owner identity (sent as X-User-ID)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output results in JSON format")

	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("api.user_id", rootCmd.PersistentFlags().Lookup("user-id"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".autopilot-cli")
	}

	viper.SetEnvPrefix("AUTOPILOT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if !outputJSON {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	// Override with flags if provided
	if apiURL != "" && apiURL != "http://localhost:8080" {
		viper.Set("api.url", apiURL)
	}
	if userID != "" {
		viper.Set("api.user_id", userID)
	}
}
