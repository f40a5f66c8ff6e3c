package engine

import (
	"errors"
	"testing"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBudget(t *testing.T) {
	schedule := func() *models.AutoSchedule {
		return &models.AutoSchedule{
			MaxDailyCost:   5.0,
			MaxMonthlyPost: 30,
			CostToday:      4.8,
			PostsThisMonth: 10,
		}
	}

	t.Run("denies when estimate would breach daily cap", func(t *testing.T) {
		err := CheckBudget(schedule(), 0.5)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrBudgetExceeded))

		var budgetErr *models.BudgetError
		require.ErrorAs(t, err, &budgetErr)
		assert.Equal(t, "daily_cost", budgetErr.Reason)
	})

	t.Run("allows within daily cap", func(t *testing.T) {
		assert.NoError(t, CheckBudget(schedule(), 0.1))
	})

	t.Run("denies when monthly post cap reached", func(t *testing.T) {
		s := schedule()
		s.PostsThisMonth = 30

		err := CheckBudget(s, 0.1)
		require.Error(t, err)

		var budgetErr *models.BudgetError
		require.ErrorAs(t, err, &budgetErr)
		assert.Equal(t, "monthly_posts", budgetErr.Reason)
	})

	t.Run("zero caps disable enforcement", func(t *testing.T) {
		s := &models.AutoSchedule{CostToday: 1000, PostsThisMonth: 1000}
		assert.NoError(t, CheckBudget(s, 50))
	})
}

func TestParseCost(t *testing.T) {
	log := logger.NewForTesting()

	t.Run("well-formed value", func(t *testing.T) {
		assert.InDelta(t, 0.05, ParseCost("0.05", log), 1e-9)
	})

	t.Run("corrupted concatenated decimal", func(t *testing.T) {
		assert.InDelta(t, 0.051885, ParseCost("0.000.051885", log), 1e-9)
	})

	t.Run("doubly corrupted decimal", func(t *testing.T) {
		assert.InDelta(t, 0.02, ParseCost("0.010.030.02", log), 1e-9)
	})

	t.Run("garbage becomes zero", func(t *testing.T) {
		assert.Zero(t, ParseCost("not-a-number", log))
	})

	t.Run("empty becomes zero", func(t *testing.T) {
		assert.Zero(t, ParseCost("", log))
	})

	t.Run("negative clamps to zero", func(t *testing.T) {
		// negatives are never legitimate costs
		assert.Zero(t, ParseCost("-0.5", log))
		assert.Zero(t, ParseCost("-3", log))
	})
}
