package services

import (
	"time"

	"dts_backend/internal/auth"
	"dts_backend/internal/logger"
	"dts_backend/internal/models"
	"dts_backend/internal/repositories"
	"dts_backend/internal/services/dto"
	"dts_backend/pkg/apperrors"

	"github.com/google/uuid"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.UserDTO, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(refreshToken string) (*dto.AuthResponse, error)
	Logout(refreshToken string) error
	ChangePassword(userID, currentPassword, newPassword string) error
	SetActive(adminID, userID string, isActive bool) error
	ListUsersByRole(role models.UserRole, limit, offset int) ([]dto.UserDTO, error)
}

type AuthServiceImpl struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
) AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// Register - регистрация нового пользователя.
// User и UserProfile создаются как единое целое: при провале создания
// анкеты пользователь удаляется компенсирующей операцией.
func (s *AuthServiceImpl) Register(req *dto.RegisterRequest) (*dto.UserDTO, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	if req.Role != models.UserRoleLearner && req.Role != models.UserRoleInstructor && req.Role != models.UserRoleAdmin {
		return nil, apperrors.ErrInvalidUserRole
	}

	if req.Email != "" {
		if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
			return nil, apperrors.ErrUserAlreadyExists
		} else if !apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.Create(user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	profile := &models.UserProfile{
		UserID:          user.ID,
		Name:            req.Name,
		Surname:         req.Surname,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		Nationality:     req.Nationality,
		IDNumber:        req.IDNumber,
		ContactNumber:   req.ContactNumber,
		PhysicalAddress: req.PhysicalAddress,
	}
	if err := s.profileRepo.CreateProfile(profile); err != nil {
		// Компенсация: без анкеты пользователь существовать не должен
		if delErr := s.userRepo.Delete(user.ID); delErr != nil {
			logger.Error("compensating user delete failed",
				"user_id", user.ID, "error", delErr)
		}
		if apperrors.Is(err, repositories.ErrProfileAlreadyExists) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.Audit("user_registered", "user_id", user.ID, "role", user.Role)
	return buildUserDTO(user), nil
}

// Login - аутентификация по имени пользователя и паролю
func (s *AuthServiceImpl) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrUserDisabled
	}

	// Приложение для персонала не пускает учеников
	if req.StaffOnly && user.Role == models.UserRoleLearner {
		return nil, apperrors.ErrInsufficientPermissions
	}

	return s.issueTokens(user)
}

// RefreshToken - обмен refresh-токена на новую пару токенов
func (s *AuthServiceImpl) RefreshToken(refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrUserDisabled
	}

	// Ротация: старый refresh-токен гасим
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(user)
}

// Logout - отзыв refresh-токена
func (s *AuthServiceImpl) Logout(refreshToken string) error {
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ChangePassword - смена пароля аутентифицированным пользователем
func (s *AuthServiceImpl) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.UpdatePasswordHash(userID, hash); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.DeleteUserRefreshTokens(userID); err != nil {
		logger.Warn("failed to revoke refresh tokens after password change",
			"user_id", userID, "error", err)
	}

	logger.Audit("password_changed", "user_id", userID)
	return nil
}

// SetActive - мягкая деактивация/активация аккаунта администратором.
// Физическое удаление пользователей не поддерживается.
func (s *AuthServiceImpl) SetActive(adminID, userID string, isActive bool) error {
	admin, err := s.userRepo.FindByID(adminID)
	if err != nil {
		return apperrors.ErrInsufficientPermissions
	}
	if admin.Role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}

	status := models.UserStatusDisabled
	if isActive {
		status = models.UserStatusActive
	}

	if err := s.userRepo.UpdateStatus(userID, status); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if !isActive {
		_ = s.userRepo.DeleteUserRefreshTokens(userID)
	}

	logger.Audit("user_status_changed", "user_id", userID, "status", status, "admin_id", adminID)
	return nil
}

// ListUsersByRole - постраничный список пользователей роли (админ)
func (s *AuthServiceImpl) ListUsersByRole(role models.UserRole, limit, offset int) ([]dto.UserDTO, error) {
	if role != models.UserRoleLearner && role != models.UserRoleInstructor && role != models.UserRoleAdmin {
		return nil, apperrors.ErrInvalidUserRole
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.userRepo.FindByRole(role, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		result = append(result, *buildUserDTO(&users[i]))
	}
	return result, nil
}

// --- Внутренние помощники ---

func (s *AuthServiceImpl) issueTokens(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken := &models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.userRepo.CreateRefreshToken(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		User:         *buildUserDTO(user),
	}, nil
}

func buildUserDTO(user *models.User) *dto.UserDTO {
	return &dto.UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
}
