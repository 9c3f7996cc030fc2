package services

import (
	"time"

	"dts_backend/internal/models"
	"dts_backend/internal/repositories"
	"dts_backend/internal/services/dto"
	"dts_backend/pkg/apperrors"
)

type ProfileService interface {
	GetProfile(userID string) (*dto.ProfileResponse, error)
	UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	CreateInstructorProfile(req *dto.CreateInstructorProfileRequest) error
	CreateLearnerProfile(req *dto.CreateLearnerProfileRequest) error
}

type ProfileServiceImpl struct {
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
	stationRepo repositories.StationRepository
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	stationRepo repositories.StationRepository,
) ProfileService {
	return &ProfileServiceImpl{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		stationRepo: stationRepo,
	}
}

func (s *ProfileServiceImpl) GetProfile(userID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindProfileByUserID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return buildProfileResponse(profile), nil
}

func (s *ProfileServiceImpl) UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindProfileByUserID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Surname != nil {
		profile.Surname = *req.Surname
	}
	if req.DateOfBirth != nil {
		profile.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.Nationality != nil {
		profile.Nationality = *req.Nationality
	}
	if req.ContactNumber != nil {
		profile.ContactNumber = *req.ContactNumber
	}
	if req.PhysicalAddress != nil {
		profile.PhysicalAddress = *req.PhysicalAddress
	}

	if err := s.profileRepo.UpdateProfile(profile); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildProfileResponse(profile), nil
}

// CreateInstructorProfile - онбординг инструктора.
// Требует готовую анкету, существующую станцию и роль instructor;
// профили инструктора и ученика взаимоисключимы.
func (s *ProfileServiceImpl) CreateInstructorProfile(req *dto.CreateInstructorProfileRequest) error {
	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if user.Role != models.UserRoleInstructor {
		return apperrors.ErrInvalidUserRole
	}

	if _, err := s.profileRepo.FindProfileByUserID(req.UserID); err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if _, err := s.stationRepo.FindByID(req.StationID); err != nil {
		if apperrors.Is(err, repositories.ErrStationNotFound) {
			return apperrors.ErrStationNotFound
		}
		return apperrors.InternalError(err)
	}

	profile := &models.InstructorProfile{
		UserID:           req.UserID,
		InstructorNumber: req.InstructorNumber,
		StationID:        req.StationID,
	}
	if err := s.profileRepo.CreateInstructorProfile(profile); err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrInstructorNumberTaken):
			return apperrors.ErrAlreadyExists(err)
		case apperrors.Is(err, repositories.ErrProfileAlreadyExists):
			return apperrors.ErrAlreadyExists(err)
		default:
			return apperrors.InternalError(err)
		}
	}
	return nil
}

// CreateLearnerProfile - онбординг ученика
func (s *ProfileServiceImpl) CreateLearnerProfile(req *dto.CreateLearnerProfileRequest) error {
	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if user.Role != models.UserRoleLearner {
		return apperrors.ErrInvalidUserRole
	}

	profile := &models.LearnerProfile{
		UserID:        req.UserID,
		LearnerStatus: "pending",
		LicenseCode:   req.LicenseCode,
		RegisteredOn:  time.Now(),
	}
	if err := s.profileRepo.CreateLearnerProfile(profile); err != nil {
		if apperrors.Is(err, repositories.ErrProfileAlreadyExists) {
			return apperrors.ErrAlreadyExists(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func buildProfileResponse(profile *models.UserProfile) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		UserID:          profile.UserID,
		Name:            profile.Name,
		Surname:         profile.Surname,
		DateOfBirth:     profile.DateOfBirth,
		Gender:          profile.Gender,
		Nationality:     profile.Nationality,
		IDNumber:        profile.IDNumber,
		ContactNumber:   profile.ContactNumber,
		PhysicalAddress: profile.PhysicalAddress,
	}
}
