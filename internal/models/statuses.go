package models

type UserStatus string
type UserRole string
type BookingStatus string
type TestResult string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"

	UserRoleLearner    UserRole = "learner"
	UserRoleInstructor UserRole = "instructor"
	UserRoleAdmin      UserRole = "admin"

	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"

	TestResultPending TestResult = "pending"
	TestResultPassed  TestResult = "passed"
	TestResultFailed  TestResult = "failed"
	TestResultAbsent  TestResult = "absent"
)

// IsActive сообщает, занимает ли запись место в слоте станции.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// IsTerminal сообщает, является ли статус конечным для машины состояний.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}
