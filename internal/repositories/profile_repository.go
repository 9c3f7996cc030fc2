package repositories

import (
	"errors"

	"dts_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrProfileAlreadyExists  = errors.New("profile already exists")
	ErrInstructorNumberTaken = errors.New("instructor number already exists")
)

type ProfileRepository interface {
	CreateProfile(profile *models.UserProfile) error
	FindProfileByUserID(userID string) (*models.UserProfile, error)
	UpdateProfile(profile *models.UserProfile) error

	CreateInstructorProfile(profile *models.InstructorProfile) error
	FindInstructorByUserID(userID string) (*models.InstructorProfile, error)

	CreateLearnerProfile(profile *models.LearnerProfile) error
	FindLearnerByUserID(userID string) (*models.LearnerProfile, error)
	UpdateLearnerProfile(profile *models.LearnerProfile) error
}

type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) CreateProfile(profile *models.UserProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) FindProfileByUserID(userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) UpdateProfile(profile *models.UserProfile) error {
	return r.db.Save(profile).Error
}

func (r *ProfileRepositoryImpl) CreateInstructorProfile(profile *models.InstructorProfile) error {
	var count int64
	if err := r.db.Model(&models.InstructorProfile{}).
		Where("instructor_number = ?", profile.InstructorNumber).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrInstructorNumberTaken
	}

	if err := r.db.Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) FindInstructorByUserID(userID string) (*models.InstructorProfile, error) {
	var profile models.InstructorProfile
	err := r.db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) CreateLearnerProfile(profile *models.LearnerProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) FindLearnerByUserID(userID string) (*models.LearnerProfile, error) {
	var profile models.LearnerProfile
	err := r.db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) UpdateLearnerProfile(profile *models.LearnerProfile) error {
	return r.db.Save(profile).Error
}
