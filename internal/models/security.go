package models

import "time"

// SecurityQuestion - справочник вопросов. Сидится один раз при старте,
// после этого не изменяется.
type SecurityQuestion struct {
	BaseModel
	Question string `gorm:"uniqueIndex;not null"`
}

type UserSecurityAnswer struct {
	BaseModel
	UserID     string `gorm:"type:uuid;not null;index;uniqueIndex:uniq_question_per_user"`
	QuestionID string `gorm:"type:uuid;not null;uniqueIndex:uniq_question_per_user"`
	AnswerHash string `gorm:"not null"` // bcrypt, открытый ответ нигде не хранится
}

// RecoveryToken - одноразовый короткоживущий токен, выдаваемый после
// успешной проверки контрольных вопросов.
type RecoveryToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
}
