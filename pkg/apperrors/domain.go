package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для общих ошибок бизнес-логики и домена.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (Используются для оборачивания ошибок, напр. из репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidState - фабрика для недопустимых переходов статуса (409)
func ErrInvalidState(domain, message string) *AppError {
	return New(CodeInvalidState, domain, message, http.StatusConflict)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ (Для частых, статичных ошибок)
// =========================================================================

// --- Auth & User Status ---

// ErrWeakPassword - пароль слишком слабый.
var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

// ErrUserAlreadyExists - имя пользователя или email уже заняты.
var ErrUserAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Username or email already exists",
	http.StatusConflict,
)

// ErrInvalidCredentials - неверный логин или пароль.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid username or password",
	http.StatusUnauthorized,
)

// ErrInvalidToken - неверный или отозванный токен (access, refresh).
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrUserDisabled - аккаунт деактивирован администратором.
var ErrUserDisabled = New(
	CodeForbidden,
	"auth",
	"Your account has been disabled",
	http.StatusForbidden,
)

// ErrInvalidUserRole - операция не предусмотрена для роли пользователя.
var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

// ErrInsufficientPermissions - не-админ пытается выполнить админ-действие.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Booking ---

// ErrStationNotFound - станция не найдена.
var ErrStationNotFound = New(
	CodeNotFound,
	"booking",
	"Station not found",
	http.StatusNotFound,
)

// ErrLearnerNotFound - ученик не найден или пользователь не является учеником.
var ErrLearnerNotFound = New(
	CodeNotFound,
	"booking",
	"Learner not found",
	http.StatusNotFound,
)

// ErrBookingNotFound - запись на экзамен не найдена.
var ErrBookingNotFound = New(
	CodeNotFound,
	"booking",
	"Booking not found",
	http.StatusNotFound,
)

// ErrSlotCapacityExceeded - на станции не осталось мест в этом слоте.
var ErrSlotCapacityExceeded = New(
	CodeCapacityExceeded,
	"booking",
	"No remaining capacity for this station and time slot",
	http.StatusConflict,
)

// ErrBookingOverlap - у ученика уже есть активная запись на пересекающийся слот.
var ErrBookingOverlap = New(
	CodeConflict,
	"booking",
	"Learner already has an active booking overlapping this slot",
	http.StatusConflict,
)

// ErrInvalidBookingState - переход статуса не разрешен машиной состояний.
var ErrInvalidBookingState = New(
	CodeInvalidState,
	"booking",
	"Operation not allowed for the current booking status",
	http.StatusConflict,
)

// --- Recovery ---

// ErrRecoveryFailed - единый ответ на любой провал проверки ответов.
// Не раскрывает существование пользователя и какой именно ответ неверен.
var ErrRecoveryFailed = New(
	CodeInvalidCredentials,
	"recovery",
	"Security answers could not be verified",
	http.StatusUnauthorized,
)

// ErrRecoveryRateLimited - превышен лимит попыток восстановления.
var ErrRecoveryRateLimited = New(
	CodeRateLimited,
	"recovery",
	"Too many recovery attempts. Try again later.",
	http.StatusTooManyRequests,
)

// ErrRecoveryTokenExpired - срок действия токена восстановления истек.
var ErrRecoveryTokenExpired = New(
	CodeTokenExpired,
	"recovery",
	"Recovery token has expired",
	http.StatusUnauthorized,
)

// ErrInvalidRecoveryToken - токен неизвестен или уже использован.
var ErrInvalidRecoveryToken = New(
	CodeInvalidToken,
	"recovery",
	"Invalid recovery token",
	http.StatusUnauthorized,
)
