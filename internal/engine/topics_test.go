package engine

import (
	"testing"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSelectTopic(t *testing.T) {
	t.Run("sequential cycles deterministically", func(t *testing.T) {
		topics := []string{"A", "B", "C"}
		cursor := 0

		var picked []string
		for i := 0; i < 3; i++ {
			var topic string
			topic, cursor = SelectTopic(topics, models.RotationSequential, cursor)
			picked = append(picked, topic)
		}

		assert.Equal(t, []string{"A", "B", "C"}, picked)
		assert.Equal(t, 0, cursor)
	})

	t.Run("stale cursor after topic list shrinks", func(t *testing.T) {
		topic, cursor := SelectTopic([]string{"A"}, models.RotationSequential, 2)
		assert.Equal(t, "A", topic)
		assert.Equal(t, 0, cursor)
	})

	t.Run("negative cursor normalized", func(t *testing.T) {
		topic, cursor := SelectTopic([]string{"A", "B"}, models.RotationSequential, -3)
		assert.Equal(t, "A", topic)
		assert.Equal(t, 1, cursor)
	})

	t.Run("empty list yields fallback and keeps cursor", func(t *testing.T) {
		topic, cursor := SelectTopic(nil, models.RotationSequential, 5)
		assert.Equal(t, FallbackTopic, topic)
		assert.Equal(t, 5, cursor)
	})

	t.Run("random never advances cursor", func(t *testing.T) {
		topics := []string{"A", "B", "C"}
		for i := 0; i < 50; i++ {
			topic, cursor := SelectTopic(topics, models.RotationRandom, 1)
			assert.Contains(t, topics, topic)
			assert.Equal(t, 1, cursor)
		}
	})
}
