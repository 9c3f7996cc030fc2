package dto

import "time"

// UpdateProfileRequest - обновление анкеты пользователя
type UpdateProfileRequest struct {
	Name            *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	Surname         *string    `json:"surname,omitempty" validate:"omitempty,min=1"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	Gender          *string    `json:"gender,omitempty"`
	Nationality     *string    `json:"nationality,omitempty"`
	ContactNumber   *string    `json:"contact_number,omitempty"`
	PhysicalAddress *string    `json:"physical_address,omitempty"`
}

// CreateInstructorProfileRequest - онбординг инструктора
type CreateInstructorProfileRequest struct {
	UserID           string `json:"user_id" validate:"required,uuid"`
	InstructorNumber string `json:"instructor_number" validate:"required"`
	StationID        string `json:"station_id" validate:"required,uuid"`
}

// CreateLearnerProfileRequest - онбординг ученика
type CreateLearnerProfileRequest struct {
	UserID      string  `json:"user_id" validate:"required,uuid"`
	LicenseCode *string `json:"license_code,omitempty"`
}

// ProfileResponse - анкета пользователя
type ProfileResponse struct {
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Surname         string    `json:"surname"`
	DateOfBirth     time.Time `json:"date_of_birth"`
	Gender          string    `json:"gender,omitempty"`
	Nationality     string    `json:"nationality,omitempty"`
	IDNumber        string    `json:"id_number"`
	ContactNumber   string    `json:"contact_number,omitempty"`
	PhysicalAddress string    `json:"physical_address,omitempty"`
}
