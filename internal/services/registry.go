package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService     AuthService
	ProfileService  ProfileService
	BookingService  BookingService
	RecoveryService RecoveryService
	StationService  StationService
}
