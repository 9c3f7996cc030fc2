package repositories

import (
	"errors"
	"time"

	"dts_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrSlotCapacityReached = errors.New("slot capacity reached")
	ErrOverlappingBooking  = errors.New("overlapping active booking")
)

var activeStatuses = []models.BookingStatus{
	models.BookingStatusPending,
	models.BookingStatusConfirmed,
}

// SlotCount - агрегат для listAvailableSlots: сколько активных записей
// держит каждый слот станции.
type SlotCount struct {
	SlotTime time.Time
	Active   int64
}

type BookingRepository interface {
	// CreateAtomic выполняет проверку вместимости, проверку пересечений
	// и INSERT как одну транзакцию с блокировкой строки станции.
	CreateAtomic(booking *models.LearnerTestBooking, capacity int, slotStep time.Duration) error

	FindByID(id string) (*models.LearnerTestBooking, error)
	Update(booking *models.LearnerTestBooking) error

	CountActiveForSlot(stationID string, slotTime time.Time) (int64, error)
	ActiveCountsByRange(stationID string, from, to time.Time) ([]SlotCount, error)

	ListByLearner(learnerID string) ([]models.LearnerTestBooking, error)
	ListByStationAndRange(stationID string, from, to time.Time) ([]models.LearnerTestBooking, error)
	ListByDate(date time.Time) ([]models.LearnerTestBooking, error)

	CancelStalePending(cutoff time.Time) (int64, error)
}

type BookingRepositoryImpl struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &BookingRepositoryImpl{db: db}
}

func (r *BookingRepositoryImpl) CreateAtomic(booking *models.LearnerTestBooking, capacity int, slotStep time.Duration) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// SELECT ... FOR UPDATE по строке станции сериализует все
		// конкурирующие запросы на эту станцию. Два запроса на последнее
		// место не смогут оба пройти проверку ниже.
		var station models.Station
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&station, "id = ?", booking.StationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStationNotFound
			}
			return err
		}

		var active int64
		if err := tx.Model(&models.LearnerTestBooking{}).
			Where("station_id = ? AND slot_time = ? AND status IN ?",
				booking.StationID, booking.SlotTime, activeStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(capacity) {
			return ErrSlotCapacityReached
		}

		var overlapping int64
		if err := tx.Model(&models.LearnerTestBooking{}).
			Where("learner_id = ? AND status IN ? AND slot_time > ? AND slot_time < ?",
				booking.LearnerID, activeStatuses,
				booking.SlotTime.Add(-slotStep), booking.SlotTime.Add(slotStep)).
			Count(&overlapping).Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrOverlappingBooking
		}

		if err := tx.Create(booking).Error; err != nil {
			// Частичный уникальный индекс - последняя линия обороны,
			// счетчики выше только быстрый путь
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOverlappingBooking
			}
			return err
		}
		return nil
	})
}

func (r *BookingRepositoryImpl) FindByID(id string) (*models.LearnerTestBooking, error) {
	var booking models.LearnerTestBooking
	err := r.db.First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) Update(booking *models.LearnerTestBooking) error {
	return r.db.Save(booking).Error
}

func (r *BookingRepositoryImpl) CountActiveForSlot(stationID string, slotTime time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.LearnerTestBooking{}).
		Where("station_id = ? AND slot_time = ? AND status IN ?", stationID, slotTime, activeStatuses).
		Count(&count).Error
	return count, err
}

func (r *BookingRepositoryImpl) ActiveCountsByRange(stationID string, from, to time.Time) ([]SlotCount, error) {
	var counts []SlotCount
	err := r.db.Model(&models.LearnerTestBooking{}).
		Select("slot_time, COUNT(*) AS active").
		Where("station_id = ? AND slot_time >= ? AND slot_time < ? AND status IN ?",
			stationID, from, to, activeStatuses).
		Group("slot_time").
		Order("slot_time").
		Scan(&counts).Error
	return counts, err
}

func (r *BookingRepositoryImpl) ListByLearner(learnerID string) ([]models.LearnerTestBooking, error) {
	var bookings []models.LearnerTestBooking
	err := r.db.Where("learner_id = ?", learnerID).
		Order("slot_time DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepositoryImpl) ListByStationAndRange(stationID string, from, to time.Time) ([]models.LearnerTestBooking, error) {
	var bookings []models.LearnerTestBooking
	err := r.db.Where("station_id = ? AND slot_time >= ? AND slot_time < ?", stationID, from, to).
		Order("slot_time").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepositoryImpl) ListByDate(date time.Time) ([]models.LearnerTestBooking, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return r.listByRange(dayStart, dayStart.AddDate(0, 0, 1))
}

func (r *BookingRepositoryImpl) listByRange(from, to time.Time) ([]models.LearnerTestBooking, error) {
	var bookings []models.LearnerTestBooking
	err := r.db.Where("slot_time >= ? AND slot_time < ?", from, to).
		Order("slot_time").
		Find(&bookings).Error
	return bookings, err
}

// CancelStalePending переводит в cancelled записи, так и не подтвержденные
// к моменту слота. Используется фоновым воркером.
func (r *BookingRepositoryImpl) CancelStalePending(cutoff time.Time) (int64, error) {
	result := r.db.Model(&models.LearnerTestBooking{}).
		Where("status = ? AND slot_time < ?", models.BookingStatusPending, cutoff).
		Update("status", models.BookingStatusCancelled)
	return result.RowsAffected, result.Error
}
