package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/cli"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [schedule-file]",
	Short: "Deploy a schedule to the server",
	Long: `Deploy a schedule definition to the autopilot server.

The deploy command will:
  1. Validate the schedule definition
  2. Check if the API server is reachable
  3. Create the schedule on the server (active immediately)

Examples:
  autopilot deploy my-schedule.json
  autopilot deploy my-schedule.json --api-url http://prod.example.com:8080`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		if _, err := os.Stat(filename); os.IsNotExist(err) {
			fmt.Printf("❌ Error: File '%s' not found\n", filename)
			os.Exit(1)
		}

		fmt.Println("🔍 Validating schedule...")
		validationResult, err := cli.ValidateScheduleFile(filename)
		if err != nil {
			fmt.Printf("❌ Error validating schedule: %v\n", err)
			os.Exit(1)
		}

		if !validationResult.Valid {
			fmt.Println("❌ Schedule validation failed:")
			for _, e := range validationResult.Errors {
				fmt.Printf("  - %s\n", e)
			}
			os.Exit(1)
		}
		fmt.Println("✅ Validation passed")

		req, err := cli.LoadScheduleFromFile(filename)
		if err != nil {
			fmt.Printf("❌ Error loading schedule: %v\n", err)
			os.Exit(1)
		}

		client := newAPIClient()

		apiURL := viper.GetString("api.url")
		fmt.Printf("🔗 Connecting to API: %s\n", apiURL)
		if err := client.HealthCheck(); err != nil {
			fmt.Printf("❌ API health check failed: %v\n", err)
			fmt.Println("💡 Tip: Make sure the API server is running")
			os.Exit(1)
		}

		created, err := client.CreateSchedule(req)
		if err != nil {
			fmt.Printf("❌ Failed to create schedule: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(created, "", "  ")
			fmt.Println(string(data))
			return
		}

		fmt.Printf("✅ Schedule '%s' deployed\n", created.Name)
		fmt.Printf("   ID:        %s\n", created.ID)
		fmt.Printf("   Cadence:   %s at %s UTC\n", created.Frequency, created.TimeOfDayUTC)
		fmt.Printf("   Topics:    %d\n", len(created.Topics))
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}

func newAPIClient() *cli.Client {
	return cli.NewClient(viper.GetString("api.url"), viper.GetString("api.user_id"))
}
