package engine

import (
	"strconv"
	"strings"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// CheckBudget decides whether a run may proceed against the schedule's caps.
// A zero cap disables that cap. This is the advisory check; the atomic
// reserve lives in the schedule store so two concurrent runs cannot both
// pass against a stale counter.
func CheckBudget(schedule *models.AutoSchedule, estimatedCost float64) error {
	if schedule.MaxDailyCost > 0 && schedule.CostToday+estimatedCost > schedule.MaxDailyCost {
		return &models.BudgetError{ScheduleID: schedule.ID.String(), Reason: "daily_cost"}
	}

	if schedule.MaxMonthlyPost > 0 && schedule.PostsThisMonth+1 > schedule.MaxMonthlyPost {
		return &models.BudgetError{ScheduleID: schedule.ID.String(), Reason: "monthly_posts"}
	}

	return nil
}

// ParseCost decodes a cost value that may arrive as a corrupted
// concatenated-decimal string. Some upstream writers accumulated costs by
// string concatenation instead of addition, producing values like
// "0.000.051885"; the true value is the fraction after the last decimal
// point. Values that still fail to parse are treated as 0 and logged, never
// rejected, so a bad number cannot block a counter update.
func ParseCost(raw string, log *logger.Logger) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		if v < 0 {
			log.Warn("Negative cost value, clamping to zero", logger.String("raw", raw))
			return 0
		}
		return v
	}

	if idx := strings.LastIndex(raw, "."); idx >= 0 {
		if v, err := strconv.ParseFloat("0."+raw[idx+1:], 64); err == nil {
			log.Warn("Recovered corrupted cost value",
				logger.String("raw", raw),
				logger.Float64("recovered", v),
			)
			return v
		}
	}

	log.Warn("Unparseable cost value, treating as zero", logger.String("raw", raw))
	return 0
}
