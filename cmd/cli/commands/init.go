package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/cli"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

var (
	templateName string
	outputFile   string
)

var initCmd = &cobra.Command{
	Use:   "init [schedule-name]",
	Short: "Initialize a new schedule definition",
	Long: `Initialize a new schedule definition file from a template.

Available templates:
  - daily: One post every day at a fixed local time
  - weekly: One post per week
  - weekdays: Posts on selected weekdays only
  - cron: Cadence driven by a cron expression
  - blank: Minimal skeleton to fill in by hand

Examples:
  autopilot init my-blog-schedule --template daily
  autopilot init promo-schedule --template cron --output promo.json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scheduleName := args[0]

		if outputFile == "" {
			outputFile = strings.ToLower(strings.ReplaceAll(scheduleName, " ", "-")) + ".json"
		}

		if _, err := os.Stat(outputFile); err == nil {
			fmt.Printf("❌ Error: File '%s' already exists\n", outputFile)
			os.Exit(1)
		}

		schedule, err := loadTemplate(templateName, scheduleName)
		if err != nil {
			fmt.Printf("❌ Error loading template: %v\n", err)
			os.Exit(1)
		}

		if err := cli.SaveScheduleToFile(schedule, outputFile); err != nil {
			fmt.Printf("❌ Error saving schedule: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("✅ Created schedule definition: %s\n", outputFile)
		fmt.Println("💡 Fill in site_id and topics, then run:")
		fmt.Printf("   autopilot validate %s\n", filepath.Base(outputFile))
		fmt.Printf("   autopilot deploy %s\n", filepath.Base(outputFile))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&templateName, "template", "t", "daily", "Template to use (daily, weekly, weekdays, cron, blank)")
	initCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file name (default: <schedule-name>.json)")
}

func loadTemplate(name, scheduleName string) (*models.CreateAutoScheduleRequest, error) {
	base := &models.CreateAutoScheduleRequest{
		SiteID:         uuid.Nil,
		Name:           scheduleName,
		Frequency:      "daily",
		LocalTime:      "09:00",
		Timezone:       "UTC",
		Topics:         []string{"Replace with your first topic"},
		Tone:           "professional",
		WordCount:      800,
		AIProvider:     "openai",
		TopicRotation:  "sequential",
		MaxDailyCost:   5.0,
		MaxMonthlyPost: 30,
	}

	switch name {
	case "daily":
		return base, nil
	case "weekly":
		base.Frequency = "weekly"
		return base, nil
	case "weekdays":
		base.Frequency = "custom_days"
		base.CustomDays = []int{1, 3, 5} // Mon, Wed, Fri
		return base, nil
	case "cron":
		base.Frequency = "custom_cron"
		base.CronExpr = "0 9 * * 1-5"
		return base, nil
	case "blank":
		return &models.CreateAutoScheduleRequest{
			Name:      scheduleName,
			Frequency: "daily",
			LocalTime: "09:00",
			Timezone:  "UTC",
		}, nil
	default:
		return nil, fmt.Errorf("unknown template %q (try: daily, weekly, weekdays, cron, blank)", name)
	}
}
