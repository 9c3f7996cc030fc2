package models

import "time"

type User struct {
	BaseModel
	Username     string     `gorm:"uniqueIndex;not null"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Role         UserRole   `gorm:"type:varchar(20);not null"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'"`

	// Relations
	Profile           *UserProfile         `gorm:"foreignKey:UserID"`
	InstructorProfile *InstructorProfile   `gorm:"foreignKey:UserID"`
	LearnerProfile    *LearnerProfile      `gorm:"foreignKey:UserID"`
	SecurityAnswers   []UserSecurityAnswer `gorm:"foreignKey:UserID"`
	RefreshTokens     []RefreshToken       `gorm:"foreignKey:UserID"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
