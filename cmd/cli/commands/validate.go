package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schedule-file]",
	Short: "Validate a schedule definition",
	Long: `Validate a schedule definition file without deploying it.

Checks cadence settings, time and timezone formats, cron expressions, topics,
and budget caps against what the server would accept.

Examples:
  autopilot validate my-schedule.json
  autopilot validate my-schedule.json --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		if _, err := os.Stat(filename); os.IsNotExist(err) {
			fmt.Printf("❌ Error: File '%s' not found\n", filename)
			os.Exit(1)
		}

		result, err := cli.ValidateScheduleFile(filename)
		if err != nil {
			fmt.Printf("❌ Error validating schedule: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			if !result.Valid {
				os.Exit(1)
			}
			return
		}

		if !result.Valid {
			fmt.Println("❌ Schedule validation failed:")
			for _, e := range result.Errors {
				fmt.Printf("  - %s\n", e)
			}
			os.Exit(1)
		}

		fmt.Println("✅ Schedule definition is valid")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
