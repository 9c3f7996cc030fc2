package models

import "time"

type UserProfile struct {
	BaseModel
	UserID          string    `gorm:"type:uuid;uniqueIndex;not null"`
	Name            string    `gorm:"not null"`
	Surname         string    `gorm:"not null"`
	DateOfBirth     time.Time `gorm:"not null"`
	Gender          string
	Nationality     string
	IDNumber        string `gorm:"uniqueIndex;not null"`
	ContactNumber   string
	PhysicalAddress string
}

// InstructorProfile - 1:1 с UserProfile, взаимоисключим с LearnerProfile по роли.
type InstructorProfile struct {
	BaseModel
	UserID           string `gorm:"type:uuid;uniqueIndex;not null"`
	InstructorNumber string `gorm:"uniqueIndex;not null"`
	StationID        string `gorm:"type:uuid;not null;index"`
}

type LearnerProfile struct {
	BaseModel
	UserID        string     `gorm:"type:uuid;uniqueIndex;not null"`
	LearnerStatus string     `gorm:"default:'pending';not null"`
	LicenseCode   *string
	RegisteredOn  time.Time  `gorm:"not null;default:now()"`
	NextTestDate  *time.Time
}
