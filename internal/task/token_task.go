package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"sellerhub/internal/model"
	"sellerhub/internal/repository"
	"sellerhub/internal/service"
)

// TokenTask keeps access tokens alive: every 40 minutes it refreshes any
// integration whose token expires within the lookahead window.
type TokenTask struct {
	integrationRepo repository.IntegrationRepository
	authService     *service.AuthService
	cron            *cron.Cron
	logger          *zap.Logger

	// Caps concurrent refresh calls so a large tenant does not hammer
	// the platform token endpoints.
	concurrencyLimit int
	sleepTime        time.Duration
	lookahead        time.Duration
}

func NewTokenTask(integrationRepo repository.IntegrationRepository, authService *service.AuthService, logger *zap.Logger) *TokenTask {
	return &TokenTask{
		integrationRepo:  integrationRepo,
		authService:      authService,
		cron:             cron.New(cron.WithSeconds()),
		logger:           logger,
		concurrencyLimit: 20,
		sleepTime:        50 * time.Millisecond,
		lookahead:        2 * time.Hour,
	}
}

// Start runs one immediate pass and then schedules the recurring one.
func (t *TokenTask) Start() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.logger.Info("running initial token refresh pass")
		t.refreshJob(ctx)
	}()

	_, err := t.cron.AddFunc("0 0/40 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.refreshJob(ctx)
	})
	if err != nil {
		t.logger.Fatal("failed to schedule token refresh task", zap.Error(err))
	}

	t.cron.Start()
	t.logger.Info("token refresh task started", zap.String("schedule", "every 40 minutes"))
}

func (t *TokenTask) Stop() {
	t.cron.Stop()
}

func (t *TokenTask) refreshJob(ctx context.Context) {
	integrations, err := t.integrationRepo.FindExpiring(ctx, t.lookahead)
	if err != nil {
		t.logger.Error("failed to query expiring integrations", zap.Error(err))
		return
	}
	if len(integrations) == 0 {
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	t.logger.Info("refreshing integration tokens",
		zap.Int("count", len(integrations)),
		zap.Int("concurrency", t.concurrencyLimit))

	for _, integration := range integrations {
		select {
		case <-ctx.Done():
			t.logger.Warn("token refresh pass timed out")
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(t.sleepTime)

		go func(in model.Integration) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := t.authService.RefreshIntegrationToken(ctx, &in); err != nil {
				t.logger.Warn("token refresh failed",
					zap.String("platform", in.Platform),
					zap.Int64("integration_id", in.ID),
					zap.Error(err))
			}
		}(integration)
	}

	wg.Wait()
	t.logger.Info("token refresh pass finished")
}
