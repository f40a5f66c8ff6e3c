package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	activeOnly bool
	pausedOnly bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all schedules",
	Long: `List all content schedules from the autopilot server.

Examples:
  autopilot list
  autopilot list --active-only
  autopilot list --json`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()

		if err := client.HealthCheck(); err != nil {
			fmt.Printf("❌ API health check failed: %v\n", err)
			fmt.Println("💡 Tip: Make sure the API server is running")
			os.Exit(1)
		}

		schedules, err := client.GetSchedules()
		if err != nil {
			fmt.Printf("❌ Failed to get schedules: %v\n", err)
			os.Exit(1)
		}

		if activeOnly || pausedOnly {
			filtered := schedules[:0]
			for _, s := range schedules {
				if s.IsActive == activeOnly {
					filtered = append(filtered, s)
				}
			}
			schedules = filtered
		}

		if outputJSON {
			data, _ := json.MarshalIndent(schedules, "", "  ")
			fmt.Println(string(data))
			return
		}

		if len(schedules) == 0 {
			fmt.Println("No schedules found")
			return
		}

		fmt.Printf("Found %d schedule(s):\n\n", len(schedules))
		for _, s := range schedules {
			status := "⏸️  paused"
			if s.IsActive {
				status = "▶️  active"
			}
			fmt.Printf("%s  %s\n", status, s.Name)
			fmt.Printf("     ID:       %s\n", s.ID)
			fmt.Printf("     Cadence:  %s at %s %s (%s UTC)\n", s.Frequency, s.LocalTime, s.Timezone, s.TimeOfDayUTC)
			fmt.Printf("     Budget:   $%.2f/%.2f today, %d/%d posts this month\n",
				s.CostToday, s.MaxDailyCost, s.PostsThisMonth, s.MaxMonthlyPost)
			if s.LastRun != nil {
				fmt.Printf("     Last run: %s\n", s.LastRun.Format("2006-01-02 15:04 UTC"))
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&activeOnly, "active-only", false, "Show only active schedules")
	listCmd.Flags().BoolVar(&pausedOnly, "paused-only", false, "Show only paused schedules")
}
