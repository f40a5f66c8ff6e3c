package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var activityLimit int

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent activity",
	Long: `Show recent activity history: schedule runs, publications, and
configuration changes, newest first.

Examples:
  autopilot activity
  autopilot activity --limit 100 --json`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()

		entries, err := client.GetActivity(activityLimit)
		if err != nil {
			fmt.Printf("❌ Failed to get activity: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(entries, "", "  ")
			fmt.Println(string(data))
			return
		}

		if len(entries) == 0 {
			fmt.Println("No activity recorded")
			return
		}

		for _, e := range entries {
			fmt.Printf("%s  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Event)
			if len(e.Metadata) > 0 {
				meta, _ := json.Marshal(e.Metadata)
				fmt.Printf("    %s\n", meta)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(activityCmd)
	activityCmd.Flags().IntVar(&activityLimit, "limit", 50, "Maximum number of entries")
}
