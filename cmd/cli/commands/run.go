package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [schedule-id]",
	Short: "Trigger a schedule run immediately",
	Long: `Trigger an immediate content generation run for a schedule, bypassing
its cadence window. Budget caps and the single-run lock still apply.

Examples:
  autopilot run 4f9c2b1a-...
  autopilot run 4f9c2b1a-... --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()

		fmt.Println("🚀 Triggering run...")
		result, err := client.RunSchedule(args[0])
		if err != nil {
			fmt.Printf("❌ Run failed: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return
		}

		fmt.Println("✅ Run completed")
		fmt.Printf("   Topic:       %s\n", result.Topic)
		fmt.Printf("   Title:       %s\n", result.Title)
		fmt.Printf("   Content ID:  %s\n", result.ContentID)
		fmt.Printf("   Disposition: %s\n", result.Disposition)
		fmt.Printf("   Cost:        $%.4f\n", result.Cost)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
