package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var queueStatus string

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the publication queue",
	Long: `List publication queue entries, newest first.

Examples:
  autopilot queue
  autopilot queue --status failed
  autopilot queue --status scheduled --json`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()

		entries, err := client.GetQueue(queueStatus)
		if err != nil {
			fmt.Printf("❌ Failed to get queue: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(entries, "", "  ")
			fmt.Println(string(data))
			return
		}

		if len(entries) == 0 {
			fmt.Println("Queue is empty")
			return
		}

		fmt.Printf("Found %d entry(ies):\n\n", len(entries))
		for _, e := range entries {
			icon := statusIcon(string(e.Status))
			title := "(untitled)"
			if e.Title != nil {
				title = *e.Title
			}
			fmt.Printf("%s %-11s %s\n", icon, e.Status, title)
			fmt.Printf("     ID:         %s\n", e.ID)
			fmt.Printf("     Scheduled:  %s\n", e.ScheduledDate.Format("2006-01-02 15:04 UTC"))
			if e.ErrorMessage != nil {
				fmt.Printf("     Error:      %s\n", *e.ErrorMessage)
			}
			fmt.Println()
		}
	},
}

var queueRetryCmd = &cobra.Command{
	Use:   "retry [entry-id]",
	Short: "Retry a failed publication",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()
		if err := client.RetryQueueEntry(args[0]); err != nil {
			fmt.Printf("❌ Failed to retry entry: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("🔁 Entry requeued for immediate publication")
	},
}

var queueCancelCmd = &cobra.Command{
	Use:   "cancel [entry-id]",
	Short: "Cancel a pending publication",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()
		if err := client.CancelQueueEntry(args[0]); err != nil {
			fmt.Printf("❌ Failed to cancel entry: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("🚫 Entry cancelled")
	},
}

func statusIcon(status string) string {
	switch status {
	case "published":
		return "✅"
	case "failed":
		return "❌"
	case "publishing":
		return "⏳"
	case "cancelled":
		return "🚫"
	default:
		return "📅"
	}
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueRetryCmd)
	queueCmd.AddCommand(queueCancelCmd)
	queueCmd.Flags().StringVar(&queueStatus, "status", "", "Filter by status (scheduled, publishing, published, failed, cancelled)")
}
