package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"loantrack/internal/domain/loan"
	"loantrack/internal/event"
	"loantrack/internal/infrastructure/monitoring"
	"loantrack/internal/pkg/dates"
)

// DueReminderJob sweeps the installments that fall due today and publishes one
// reminder event per unpaid installment of an active loan.
type DueReminderJob struct {
	loanService loan.LoanService
	publisher   event.Publisher
	timezone    *time.Location
	logger      *slog.Logger
}

func NewDueReminderJob(
	loanSvc loan.LoanService,
	publisher event.Publisher,
	timezone *time.Location,
	logger *slog.Logger,
) *DueReminderJob {
	if loanSvc == nil || publisher == nil || logger == nil {
		panic("DueReminderJob dependencies cannot be nil")
	}
	if timezone == nil {
		timezone = time.UTC
	}
	return &DueReminderJob{
		loanService: loanSvc,
		publisher:   publisher,
		timezone:    timezone,
		logger:      logger.With("job", "DueReminder"),
	}
}

func (j *DueReminderJob) Run(ctx context.Context) error {
	startTime := time.Now()
	today := dates.Today(j.timezone)
	j.logger.InfoContext(ctx, "Starting daily due installment sweep.", slog.String("date", today.String()))

	dueInstallments, err := j.loanService.ListInstallmentsDueOn(ctx, today)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list due installments, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list due installments: %w", err)
	}

	monitoring.RecordDueSweep(len(dueInstallments))
	j.logger.InfoContext(ctx, "Fetched due installments.", slog.Int("count", len(dueInstallments)))

	if len(dueInstallments) == 0 {
		j.logger.InfoContext(ctx, "No installments due today.", slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	var wg sync.WaitGroup
	var publishedCount, errorCount int32

	for _, due := range dueInstallments {
		wg.Add(1)
		go func(entry loan.DueInstallment) {
			defer wg.Done()

			logCtx := j.logger.With(slog.Int64("installmentID", entry.ID), slog.Int64("loanID", entry.LoanID))

			publishErr := j.publisher.PublishInstallmentDue(ctx, event.InstallmentDueEvent{
				InstallmentID: entry.ID,
				LoanID:        entry.LoanID,
				LoanCode:      entry.LoanCode,
				BankName:      entry.BankName,
				Sequence:      entry.Sequence,
				DueDate:       entry.DueDate.String(),
				Amount:        entry.Amount.StringFixed(2),
			})
			if publishErr != nil {
				logCtx.ErrorContext(ctx, "Failed to publish due installment event", slog.Any("error", publishErr))
				atomic.AddInt32(&errorCount, 1)
				return
			}
			logCtx.DebugContext(ctx, "Published due installment event.")
			atomic.AddInt32(&publishedCount, 1)
		}(due)
	}

	wg.Wait()
	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("installments_due", len(dueInstallments)),
		slog.Int("events_published", int(atomic.LoadInt32(&publishedCount))),
		slog.Int("errors_encountered", int(atomic.LoadInt32(&errorCount))),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Due installment sweep finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Due installment sweep finished successfully.")
	return nil
}
