package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"sellerhub/internal/service"
)

// AutomationTask periodically runs the standing-rule evaluation pass.
type AutomationTask struct {
	automationService *service.AutomationService
	cron              *cron.Cron
	logger            *zap.Logger
}

func NewAutomationTask(automationService *service.AutomationService, logger *zap.Logger) *AutomationTask {
	return &AutomationTask{
		automationService: automationService,
		cron:              cron.New(cron.WithSeconds()),
		logger:            logger,
	}
}

func (t *AutomationTask) Start() {
	_, err := t.cron.AddFunc("0 */15 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.automationService.RunPass(ctx)
	})
	if err != nil {
		t.logger.Fatal("failed to schedule automation task", zap.Error(err))
	}

	t.cron.Start()
	t.logger.Info("automation task started", zap.String("schedule", "every 15 minutes"))
}

func (t *AutomationTask) Stop() {
	t.cron.Stop()
}

// RunNow triggers one pass outside the schedule, for the manual endpoint.
func (t *AutomationTask) RunNow(ctx context.Context) {
	t.automationService.RunPass(ctx)
}
