package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/config"
	"github.com/mamadbah2/dfarm/internal/domain/models"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

// ErrNoServiceAccount is returned by Start when no service credentials are
// configured for background jobs.
var ErrNoServiceAccount = errors.New("no service account configured")

// Publisher produces and stores the nightly report.
type Publisher interface {
	PublishDailyReport(ctx context.Context, sess models.Session, day time.Time) (models.DailyReport, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reports  Publisher
	auth     wp.Authenticator
	username string
	password string
	schedule string
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler running in the reporting time zone.
func NewScheduler(cfg config.Config, reports Publisher, auth wp.Authenticator, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := cfg.Reporting.Location()
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reports:  reports,
		auth:     auth,
		username: cfg.WordPress.Username,
		password: cfg.WordPress.Password,
		schedule: cfg.Reporting.CronSchedule,
		logger:   logger,
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

// Start registers the nightly report and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.username == "" {
		return ErrNoServiceAccount
	}

	if _, err := s.cron.AddFunc(s.schedule, s.publishDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

// RunDailyReport signs in with the service account and publishes today's
// report.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	sess, err := s.session(ctx)
	if err != nil {
		return err
	}

	report, err := s.reports.PublishDailyReport(ctx, sess, s.now())
	if err != nil {
		return fmt.Errorf("publish daily report: %w", err)
	}

	s.logger.Info("scheduled daily report finished",
		zap.String("date", report.Date.Format(models.ISODateLayout)),
		zap.Float64("milk_liters", report.MilkLiters),
		zap.Int("animals_milked", report.AnimalsMilked))
	return nil
}

func (s *Scheduler) session(ctx context.Context) (models.Session, error) {
	login, err := s.auth.Login(ctx, s.username, s.password)
	if err != nil {
		return models.Session{}, fmt.Errorf("service account login: %w", err)
	}

	user, err := s.auth.CurrentUser(ctx, login.Token)
	if err != nil {
		return models.Session{}, fmt.Errorf("service account profile: %w", err)
	}

	return models.Session{
		Token:  login.Token,
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}, nil
}
