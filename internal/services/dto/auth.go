package dto

import (
	"time"

	"dts_backend/internal/models"
)

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=50"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Role     models.UserRole `json:"role" validate:"required,is-user-role"`

	// Поля анкеты (UserProfile создается атомарно с User)
	Name            string    `json:"name" validate:"required"`
	Surname         string    `json:"surname" validate:"required"`
	DateOfBirth     time.Time `json:"date_of_birth" validate:"required"`
	Gender          string    `json:"gender"`
	Nationality     string    `json:"nationality"`
	IDNumber        string    `json:"id_number" validate:"required"`
	ContactNumber   string    `json:"contact_number"`
	PhysicalAddress string    `json:"physical_address"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	// StaffOnly: приложение для персонала пускает только инструкторов и админов
	StaffOnly bool `json:"staff_only"`
}

// RefreshTokenRequest - запрос обновления токена
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest - запрос выхода
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ChangePasswordRequest - смена пароля аутентифицированным пользователем
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// SetActiveRequest - деактивация/активация аккаунта админом
type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// AuthResponse - ответ с токенами
type AuthResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// UserDTO - базовая информация о пользователе
type UserDTO struct {
	ID        string            `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Role      models.UserRole   `json:"role"`
	Status    models.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
