package models

import "time"

// LearnerTestBooking - запись ученика на экзаменационный слот.
// Строки никогда не удаляются физически: отмена это переход в статус cancelled.
// Уникальный частичный индекс (station_id, slot_time, learner_id) по активным
// статусам создается в database.AutoMigrate и является источником истины
// против гонки двух одновременных запросов на последнее место.
type LearnerTestBooking struct {
	BaseModel
	LearnerID    string        `gorm:"type:uuid;not null;index"`
	InstructorID *string       `gorm:"type:uuid;index"`
	StationID    string        `gorm:"type:uuid;not null;index:idx_bookings_station_slot"`
	SlotTime     time.Time     `gorm:"not null;index:idx_bookings_station_slot"`
	Status       BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Result       TestResult    `gorm:"type:varchar(20);not null;default:'pending'"`
	LicenseCode  *string
	CancelledBy  *string `gorm:"type:uuid"`
}
