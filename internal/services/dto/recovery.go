package dto

import "time"

// StartRecoveryRequest - первый шаг восстановления пароля
type StartRecoveryRequest struct {
	Username string `json:"username" validate:"required"`
}

// QuestionPrompt - текст вопроса без ответа
type QuestionPrompt struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
}

// RecoveryQuestionsResponse - единый ответ на StartRecovery.
// Формат одинаков для существующих и несуществующих аккаунтов.
type RecoveryQuestionsResponse struct {
	Message   string           `json:"message"`
	Questions []QuestionPrompt `json:"questions"`
}

// AnswerSubmission - один ответ в verifyAnswers
type AnswerSubmission struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}

// VerifyAnswersRequest - второй шаг: упорядоченный список ответов
type VerifyAnswersRequest struct {
	Username string             `json:"username" validate:"required"`
	Answers  []AnswerSubmission `json:"answers" validate:"required,min=1,dive"`
}

// RecoveryTokenResponse - короткоживущий токен после успешной проверки
type RecoveryTokenResponse struct {
	RecoveryToken string    `json:"recovery_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ResetPasswordRequest - финальный шаг восстановления
type ResetPasswordRequest struct {
	RecoveryToken string `json:"recovery_token" validate:"required"`
	NewPassword   string `json:"new_password" validate:"required,min=8"`
}

// RegisterAnswerRequest - регистрация ответа на контрольный вопрос
type RegisterAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required,uuid"`
	Answer     string `json:"answer" validate:"required,min=1"`
}
