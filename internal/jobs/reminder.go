package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/nammapaisa/server/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderJob scans for unpaid installments coming due and logs a
// structured reminder per loan. It runs inside the server process on the
// configured cron schedule.
type ReminderJob struct {
	installmentRepository repository.InstallmentRepository
	schedule              string
	daysAhead             int
	log                   *zap.Logger
	cron                  *cron.Cron
}

func NewReminderJob(
	installmentRepository repository.InstallmentRepository,
	schedule string,
	daysAhead int,
	log *zap.Logger,
) *ReminderJob {
	return &ReminderJob{
		installmentRepository: installmentRepository,
		schedule:              schedule,
		daysAhead:             daysAhead,
		log:                   log,
	}
}

func (j *ReminderJob) Start() error {
	j.cron = cron.New()

	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("unable to schedule due reminder job: %w", err)
	}

	j.cron.Start()

	j.log.Info("Due reminder job scheduled",
		zap.String("schedule", j.schedule),
		zap.Int("days_ahead", j.daysAhead),
	)

	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (j *ReminderJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	j.log.Info("Due reminder job stopped")
}

func (j *ReminderJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, j.daysAhead+1)

	due, err := j.installmentRepository.FindDueBetween(ctx, from, to)
	if err != nil {
		j.log.Error("Due reminder scan failed", zap.Error(err))
		return
	}

	if len(due) == 0 {
		j.log.Debug("No installments due soon",
			zap.String("from", from.Format("2006-01-02")),
			zap.String("to", to.Format("2006-01-02")),
		)
		return
	}

	for _, installment := range due {
		daysLeft := int(installment.DueDate.Sub(from).Hours() / 24)

		j.log.Info("Installment due soon",
			zap.Uint64("user_id", installment.UserID),
			zap.Uint64("loan_id", installment.LoanID),
			zap.String("loan_name", installment.LoanName),
			zap.Int("installment_number", installment.Number),
			zap.String("due_date", installment.DueDate.Format("2006-01-02")),
			zap.Float64("amount", installment.Amount),
			zap.Int("days_left", daysLeft),
		)
	}

	j.log.Info("Due reminder scan completed", zap.Int("reminders", len(due)))
}
