package handlers

import (
	"github.com/JaxylViernes/wp-seo-autopilot/internal/services"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// Handlers aggregates all HTTP handlers
type Handlers struct {
	Health   *HealthHandler
	Schedule *AutoScheduleHandler
	Queue    *QueueHandler
	Activity *ActivityHandler
}

// HealthCheckers holds all health check dependencies
type HealthCheckers struct {
	DB    HealthChecker
	Redis HealthChecker
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	log *logger.Logger,
	scheduleService *services.AutoScheduleService,
	queueService *services.ContentScheduleService,
	activityService *services.ActivityService,
	healthCheckers *HealthCheckers,
	version string,
) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(log, healthCheckers.DB, healthCheckers.Redis, version),
		Schedule: NewAutoScheduleHandler(log, scheduleService),
		Queue:    NewQueueHandler(log, queueService),
		Activity: NewActivityHandler(log, activityService),
	}
}
