package engine

import (
	"math/rand"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// FallbackTopic is used when a schedule has no topics configured
const FallbackTopic = "Industry news and insights"

// SelectTopic returns the topic for the next run and the updated rotation
// cursor. Sequential rotation advances the persisted cursor; random rotation
// samples uniformly and leaves the cursor untouched. The modulo guards
// against a cursor left out of range by a shrunken topic list.
func SelectTopic(topics []string, rotation models.TopicRotation, cursor int) (string, int) {
	if len(topics) == 0 {
		return FallbackTopic, cursor
	}

	switch rotation {
	case models.RotationRandom:
		return topics[rand.Intn(len(topics))], cursor
	default: // sequential
		if cursor < 0 {
			cursor = 0
		}
		idx := cursor % len(topics)
		return topics[idx], (idx + 1) % len(topics)
	}
}
