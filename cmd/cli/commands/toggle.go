package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause [schedule-id]",
	Short: "Pause a schedule",
	Long: `Pause a schedule so the poller skips it. Budget counters and rotation
state are preserved.

Example:
  autopilot pause 4f9c2b1a-...`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()
		if err := client.PauseSchedule(args[0]); err != nil {
			fmt.Printf("❌ Failed to pause schedule: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("⏸️  Schedule paused")
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume [schedule-id]",
	Short: "Resume a paused schedule",
	Long: `Resume a paused schedule. The next run happens at the next cadence
window, not immediately.

Example:
  autopilot resume 4f9c2b1a-...`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()
		if err := client.ResumeSchedule(args[0]); err != nil {
			fmt.Printf("❌ Failed to resume schedule: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("▶️  Schedule resumed")
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [schedule-id]",
	Short: "Delete a schedule",
	Long: `Delete a schedule. Already queued publications are not affected.

Example:
  autopilot delete 4f9c2b1a-...`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()
		if err := client.DeleteSchedule(args[0]); err != nil {
			fmt.Printf("❌ Failed to delete schedule: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("🗑️  Schedule deleted")
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(deleteCmd)
}
