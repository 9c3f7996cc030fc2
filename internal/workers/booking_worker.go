package workers

import (
	"context"
	"time"

	"dts_backend/internal/logger"
	"dts_backend/internal/repositories"
)

// BookingWorker выполняет периодическую уборку: отменяет неподтвержденные
// записи с прошедшим слотом и чистит просроченные токены.
type BookingWorker struct {
	bookingRepo  repositories.BookingRepository
	securityRepo repositories.SecurityRepository
	userRepo     repositories.UserRepository
}

func NewBookingWorker(
	bookingRepo repositories.BookingRepository,
	securityRepo repositories.SecurityRepository,
	userRepo repositories.UserRepository,
) *BookingWorker {
	return &BookingWorker{
		bookingRepo:  bookingRepo,
		securityRepo: securityRepo,
		userRepo:     userRepo,
	}
}

// Start запускает фоновые задачи
func (w *BookingWorker) Start(ctx context.Context) {
	go w.cleanupLoop(ctx)
}

func (w *BookingWorker) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Booking worker stopped")
			return
		case <-ticker.C:
			w.runCleanup()
		}
	}
}

func (w *BookingWorker) runCleanup() {
	// Записи, оставшиеся в pending после времени слота, место не держат.
	cancelled, err := w.bookingRepo.CancelStalePending(time.Now())
	if err != nil {
		logger.Error("Failed to cancel stale pending bookings", "error", err)
	} else if cancelled > 0 {
		logger.Info("Cancelled stale pending bookings", "count", cancelled)
	}

	if err := w.securityRepo.DeleteExpiredRecoveryTokens(); err != nil {
		logger.Error("Failed to delete expired recovery tokens", "error", err)
	}

	if err := w.userRepo.CleanExpiredRefreshTokens(); err != nil {
		logger.Error("Failed to clean expired refresh tokens", "error", err)
	}
}
