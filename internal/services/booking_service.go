package services

import (
	"time"

	"dts_backend/internal/config"
	"dts_backend/internal/logger"
	"dts_backend/internal/models"
	"dts_backend/internal/repositories"
	"dts_backend/internal/services/dto"
	"dts_backend/pkg/apperrors"
)

type BookingService interface {
	RequestBooking(req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	ConfirmBooking(bookingID, actorID string) (*dto.BookingResponse, error)
	CancelBooking(bookingID, actorID string) error
	CompleteBooking(bookingID, actorID string, req *dto.CompleteBookingRequest) (*dto.BookingResponse, error)
	ListAvailableSlots(stationID string, from, to time.Time) ([]dto.AvailableSlot, error)
	ListStationSchedule(stationID string, from, to time.Time) ([]dto.BookingResponse, error)
	ListBookingsByLearner(learnerID string) ([]dto.BookingResponse, error)
	ResultsByDate(date time.Time) (*dto.DayResultsSummary, error)
}

type BookingServiceImpl struct {
	bookingRepo repositories.BookingRepository
	stationRepo repositories.StationRepository
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
	cfg         *config.Config
}

func NewBookingService(
	bookingRepo repositories.BookingRepository,
	stationRepo repositories.StationRepository,
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	cfg *config.Config,
) BookingService {
	return &BookingServiceImpl{
		bookingRepo: bookingRepo,
		stationRepo: stationRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		cfg:         cfg,
	}
}

func (s *BookingServiceImpl) slotStep() time.Duration {
	return time.Duration(s.cfg.Booking.SlotMinutes) * time.Minute
}

func (s *BookingServiceImpl) stationCapacity(station *models.Station) int {
	if station.NumGrounds > 0 {
		return station.NumGrounds
	}
	return s.cfg.Booking.DefaultCapacity
}

// RequestBooking - создание записи на слот со статусом pending.
// Проверка вместимости и вставка выполняются репозиторием в одной
// транзакции, здесь только валидация входа и ссылок.
func (s *BookingServiceImpl) RequestBooking(req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	step := s.slotStep()

	if !req.SlotTime.Truncate(step).Equal(req.SlotTime) {
		return nil, apperrors.NewBadRequestError("Slot time must be aligned to the booking granularity")
	}

	now := time.Now()
	if !req.SlotTime.After(now) {
		return nil, apperrors.NewBadRequestError("Slot time must be in the future")
	}
	if req.SlotTime.After(now.AddDate(0, 0, s.cfg.Booking.MaxAdvanceDays)) {
		return nil, apperrors.NewBadRequestError("Slot time is too far in the future")
	}

	// Ученик должен существовать и пройти онбординг
	if _, err := s.profileRepo.FindLearnerByUserID(req.LearnerID); err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrLearnerNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	station, err := s.stationRepo.FindByID(req.StationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrStationNotFound) {
			return nil, apperrors.ErrStationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	// Быстрая проверка занятости до транзакции; гонки окончательно
	// отсекает CreateAtomic под блокировкой строки станции.
	capacity := s.stationCapacity(station)
	if count, err := s.bookingRepo.CountActiveForSlot(req.StationID, req.SlotTime); err == nil && count >= int64(capacity) {
		return nil, apperrors.ErrSlotCapacityExceeded
	}

	booking := &models.LearnerTestBooking{
		LearnerID:    req.LearnerID,
		InstructorID: req.InstructorID,
		StationID:    req.StationID,
		SlotTime:     req.SlotTime,
		Status:       models.BookingStatusPending,
		Result:       models.TestResultPending,
	}

	if err := s.bookingRepo.CreateAtomic(booking, capacity, step); err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrSlotCapacityReached):
			return nil, apperrors.ErrSlotCapacityExceeded
		case apperrors.Is(err, repositories.ErrOverlappingBooking):
			return nil, apperrors.ErrBookingOverlap
		case apperrors.Is(err, repositories.ErrStationNotFound):
			return nil, apperrors.ErrStationNotFound
		default:
			return nil, apperrors.InternalError(err)
		}
	}

	logger.Audit("booking_requested",
		"booking_id", booking.ID,
		"learner_id", booking.LearnerID,
		"station_id", booking.StationID,
		"slot_time", booking.SlotTime,
	)

	return buildBookingResponse(booking), nil
}

// ConfirmBooking - переход pending -> confirmed
func (s *BookingServiceImpl) ConfirmBooking(bookingID, actorID string) (*dto.BookingResponse, error) {
	booking, err := s.findBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingActor(booking, actorID); err != nil {
		return nil, err
	}

	if booking.Status != models.BookingStatusPending {
		return nil, apperrors.ErrInvalidBookingState
	}

	booking.Status = models.BookingStatusConfirmed
	if err := s.bookingRepo.Update(booking); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Audit("booking_confirmed", "booking_id", booking.ID, "actor_id", actorID)
	return buildBookingResponse(booking), nil
}

// CancelBooking - переход любого не-конечного статуса в cancelled.
// Повторная отмена - no-op, место в слоте освобождается.
func (s *BookingServiceImpl) CancelBooking(bookingID, actorID string) error {
	booking, err := s.findBooking(bookingID)
	if err != nil {
		return err
	}

	if err := s.checkBookingActor(booking, actorID); err != nil {
		return err
	}

	if booking.Status == models.BookingStatusCancelled {
		// Идемпотентность: отмена отмененной записи не ошибка
		return nil
	}
	if booking.Status == models.BookingStatusCompleted {
		return apperrors.ErrInvalidBookingState
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancelledBy = &actorID
	if err := s.bookingRepo.Update(booking); err != nil {
		return apperrors.InternalError(err)
	}

	logger.Audit("booking_cancelled", "booking_id", booking.ID, "actor_id", actorID)
	return nil
}

// CompleteBooking - переход confirmed -> completed с фиксацией результата.
// Разрешен только после наступления времени слота и только персоналу.
func (s *BookingServiceImpl) CompleteBooking(bookingID, actorID string, req *dto.CompleteBookingRequest) (*dto.BookingResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInsufficientPermissions
		}
		return nil, apperrors.InternalError(err)
	}
	if actor.Role != models.UserRoleInstructor && actor.Role != models.UserRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}

	booking, err := s.findBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingStatusConfirmed {
		return nil, apperrors.ErrInvalidBookingState
	}
	if booking.SlotTime.After(time.Now()) {
		return nil, apperrors.ErrInvalidBookingState
	}

	booking.Status = models.BookingStatusCompleted
	booking.Result = req.Result
	booking.LicenseCode = req.LicenseCode
	if err := s.bookingRepo.Update(booking); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// При сдаче код категории переносится в анкету ученика
	if booking.Result == models.TestResultPassed && booking.LicenseCode != nil {
		if learner, err := s.profileRepo.FindLearnerByUserID(booking.LearnerID); err == nil {
			learner.LicenseCode = booking.LicenseCode
			if err := s.profileRepo.UpdateLearnerProfile(learner); err != nil {
				logger.Error("Failed to update learner license code",
					"learner_id", booking.LearnerID, "error", err)
			}
		}
	}

	logger.Audit("booking_completed",
		"booking_id", booking.ID,
		"actor_id", actorID,
		"result", booking.Result,
	)
	return buildBookingResponse(booking), nil
}

// ListAvailableSlots - чистое чтение: остаток мест по слотам в диапазоне
func (s *BookingServiceImpl) ListAvailableSlots(stationID string, from, to time.Time) ([]dto.AvailableSlot, error) {
	station, err := s.stationRepo.FindByID(stationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrStationNotFound) {
			return nil, apperrors.ErrStationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	step := s.slotStep()
	capacity := s.stationCapacity(station)

	// Выравниваем начало диапазона вверх до границы слота
	start := from.Truncate(step)
	if start.Before(from) {
		start = start.Add(step)
	}

	counts, err := s.bookingRepo.ActiveCountsByRange(stationID, start, to)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	taken := make(map[time.Time]int64, len(counts))
	for _, c := range counts {
		taken[c.SlotTime.UTC()] = c.Active
	}

	var slots []dto.AvailableSlot
	for t := start; t.Before(to); t = t.Add(step) {
		remaining := capacity - int(taken[t.UTC()])
		if remaining < 0 {
			remaining = 0
		}
		slots = append(slots, dto.AvailableSlot{
			SlotTime:          t,
			RemainingCapacity: remaining,
		})
	}
	return slots, nil
}

// ListStationSchedule - записи станции за период, для персонала
func (s *BookingServiceImpl) ListStationSchedule(stationID string, from, to time.Time) ([]dto.BookingResponse, error) {
	if _, err := s.stationRepo.FindByID(stationID); err != nil {
		if apperrors.Is(err, repositories.ErrStationNotFound) {
			return nil, apperrors.ErrStationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	bookings, err := s.bookingRepo.ListByStationAndRange(stationID, from, to)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, *buildBookingResponse(&bookings[i]))
	}
	return responses, nil
}

func (s *BookingServiceImpl) ListBookingsByLearner(learnerID string) ([]dto.BookingResponse, error) {
	bookings, err := s.bookingRepo.ListByLearner(learnerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, *buildBookingResponse(&bookings[i]))
	}
	return responses, nil
}

// ResultsByDate - сводка результатов за день, сгруппированная по статусу результата
func (s *BookingServiceImpl) ResultsByDate(date time.Time) (*dto.DayResultsSummary, error) {
	bookings, err := s.bookingRepo.ListByDate(date)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	results := map[string][]dto.BookingResponse{
		string(models.TestResultPending): {},
		string(models.TestResultPassed):  {},
		string(models.TestResultFailed):  {},
		string(models.TestResultAbsent):  {},
	}
	for i := range bookings {
		key := string(bookings[i].Result)
		if _, ok := results[key]; ok {
			results[key] = append(results[key], *buildBookingResponse(&bookings[i]))
		}
	}

	summary := make(map[string]int, len(results))
	for key, items := range results {
		summary[key] = len(items)
	}

	return &dto.DayResultsSummary{
		Date:          date.Format("2006-01-02"),
		TotalBookings: len(bookings),
		Results:       results,
		Summary:       summary,
	}, nil
}

// --- Внутренние помощники ---

func (s *BookingServiceImpl) findBooking(bookingID string) (*models.LearnerTestBooking, error) {
	booking, err := s.bookingRepo.FindByID(bookingID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrBookingNotFound) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return booking, nil
}

// checkBookingActor пускает владельца записи, назначенного инструктора и админа
func (s *BookingServiceImpl) checkBookingActor(booking *models.LearnerTestBooking, actorID string) error {
	if actorID == booking.LearnerID {
		return nil
	}
	if booking.InstructorID != nil && actorID == *booking.InstructorID {
		return nil
	}

	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInsufficientPermissions
		}
		return apperrors.InternalError(err)
	}
	if actor.Role != models.UserRoleAdmin && actor.Role != models.UserRoleInstructor {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

func buildBookingResponse(booking *models.LearnerTestBooking) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:           booking.ID,
		LearnerID:    booking.LearnerID,
		InstructorID: booking.InstructorID,
		StationID:    booking.StationID,
		SlotTime:     booking.SlotTime,
		Status:       booking.Status,
		Result:       booking.Result,
		LicenseCode:  booking.LicenseCode,
		CreatedAt:    booking.CreatedAt,
	}
}
