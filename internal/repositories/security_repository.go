package repositories

import (
	"errors"
	"time"

	"dts_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrQuestionNotFound      = errors.New("security question not found")
	ErrAnswerAlreadyExists   = errors.New("answer for this question already exists")
	ErrRecoveryTokenNotFound = errors.New("recovery token not found")
)

type SecurityRepository interface {
	// Справочник вопросов
	ListQuestions() ([]models.SecurityQuestion, error)
	FindQuestionByID(id string) (*models.SecurityQuestion, error)

	// Ответы пользователя
	CreateAnswer(answer *models.UserSecurityAnswer) error
	GetAnswers(userID string) ([]models.UserSecurityAnswer, error)

	// Токены восстановления
	CreateRecoveryToken(token *models.RecoveryToken) error
	FindRecoveryToken(token string) (*models.RecoveryToken, error)
	MarkRecoveryTokenUsed(id string, usedAt time.Time) error
	DeleteExpiredRecoveryTokens() error
}

type SecurityRepositoryImpl struct {
	db *gorm.DB
}

func NewSecurityRepository(db *gorm.DB) SecurityRepository {
	return &SecurityRepositoryImpl{db: db}
}

func (r *SecurityRepositoryImpl) ListQuestions() ([]models.SecurityQuestion, error) {
	var questions []models.SecurityQuestion
	err := r.db.Order("created_at").Find(&questions).Error
	return questions, err
}

func (r *SecurityRepositoryImpl) FindQuestionByID(id string) (*models.SecurityQuestion, error) {
	var question models.SecurityQuestion
	err := r.db.First(&question, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return &question, nil
}

func (r *SecurityRepositoryImpl) CreateAnswer(answer *models.UserSecurityAnswer) error {
	if err := r.db.Create(answer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAnswerAlreadyExists
		}
		return err
	}
	return nil
}

func (r *SecurityRepositoryImpl) GetAnswers(userID string) ([]models.UserSecurityAnswer, error) {
	var answers []models.UserSecurityAnswer
	err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&answers).Error
	return answers, err
}

func (r *SecurityRepositoryImpl) CreateRecoveryToken(token *models.RecoveryToken) error {
	return r.db.Create(token).Error
}

func (r *SecurityRepositoryImpl) FindRecoveryToken(token string) (*models.RecoveryToken, error) {
	var rt models.RecoveryToken
	err := r.db.First(&rt, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecoveryTokenNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (r *SecurityRepositoryImpl) MarkRecoveryTokenUsed(id string, usedAt time.Time) error {
	return r.db.Model(&models.RecoveryToken{}).Where("id = ?", id).
		Update("used_at", usedAt).Error
}

func (r *SecurityRepositoryImpl) DeleteExpiredRecoveryTokens() error {
	return r.db.Delete(&models.RecoveryToken{}, "expires_at < ?", time.Now()).Error
}
