package cron

import (
	"context"
	"fmt"

	"github.com/boutiquenoire/storefront-backend/internal/reservations"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
)

const ReservationReaperJobName = "reservation-reaper"

type expiredReaper interface {
	CleanupExpired(ctx context.Context) (*reservations.ReapReport, error)
}

// ReservationReaperJobParams configure the idle-time expiry sweep.
type ReservationReaperJobParams struct {
	Logger *logger.Logger
	Reaper expiredReaper
}

type reservationReaperJob struct {
	logg   *logger.Logger
	reaper expiredReaper
}

// NewReservationReaperJob builds the job that returns expired holds to stock
// when no request traffic triggers the reaper.
func NewReservationReaperJob(params ReservationReaperJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reaper == nil {
		return nil, fmt.Errorf("reaper required")
	}
	return &reservationReaperJob{logg: params.Logger, reaper: params.Reaper}, nil
}

func (j *reservationReaperJob) Name() string { return ReservationReaperJobName }

func (j *reservationReaperJob) Run(ctx context.Context) error {
	report, err := j.reaper.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"scanned":  report.Scanned,
		"restored": report.Restored,
		"orphaned": report.Orphaned,
		"skipped":  report.Skipped,
		"failed":   len(report.Failures),
	})
	j.logg.Info(ctx, "expired reservations swept")
	return report.Err()
}
