package dto

import (
	"time"

	"dts_backend/internal/models"
)

// --- Booking Requests ---

type CreateBookingRequest struct {
	LearnerID    string    `json:"learner_id" validate:"-"` // Устанавливается сервером из токена
	StationID    string    `json:"station_id" validate:"required,uuid"`
	SlotTime     time.Time `json:"slot_time" validate:"required"`
	InstructorID *string   `json:"instructor_id,omitempty" validate:"omitempty,uuid"`
}

type CompleteBookingRequest struct {
	Result      models.TestResult `json:"result" validate:"required,is-test-result"`
	LicenseCode *string           `json:"license_code,omitempty"`
}

type SlotRangeRequest struct {
	From time.Time `form:"from" validate:"required"`
	To   time.Time `form:"to" validate:"required,gtfield=From"`
}

// --- Booking Responses ---

type BookingResponse struct {
	ID           string               `json:"id"`
	LearnerID    string               `json:"learner_id"`
	InstructorID *string              `json:"instructor_id,omitempty"`
	StationID    string               `json:"station_id"`
	SlotTime     time.Time            `json:"slot_time"`
	Status       models.BookingStatus `json:"status"`
	Result       models.TestResult    `json:"result"`
	LicenseCode  *string              `json:"license_code,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// AvailableSlot - пара (время, остаток мест) для listAvailableSlots
type AvailableSlot struct {
	SlotTime          time.Time `json:"slot_time"`
	RemainingCapacity int       `json:"remaining_capacity"`
}

// DayResultsSummary - сводка результатов экзаменов за день
type DayResultsSummary struct {
	Date          string                       `json:"date"`
	TotalBookings int                          `json:"total_bookings"`
	Results       map[string][]BookingResponse `json:"results"`
	Summary       map[string]int               `json:"summary"`
}

// --- Station ---

type CreateStationRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Location   string `json:"location"`
	NumGrounds int    `json:"num_grounds" validate:"omitempty,min=1"`
}

type StationResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	NumGrounds int    `json:"num_grounds"`
}
