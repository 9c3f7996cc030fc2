package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	ProfileHandler  *ProfileHandler
	BookingHandler  *BookingHandler
	RecoveryHandler *RecoveryHandler
	StationHandler  *StationHandler
}
