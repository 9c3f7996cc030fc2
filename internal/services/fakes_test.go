package services

import (
	"sync"
	"time"

	"dts_backend/internal/models"
	"dts_backend/internal/repositories"

	"github.com/google/uuid"
)

// In-memory реализации репозиториев для юнит-тестов сервисов.
// Семантика повторяет SQL-реализации, включая атомарность CreateAtomic.

// --- fakeUserRepo ---

type fakeUserRepo struct {
	mu            sync.Mutex
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (r *fakeUserRepo) addUser(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) UpdateStatus(userID string, status models.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.Status = status
	return nil
}

func (r *fakeUserRepo) Delete(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) FindByRole(role models.UserRole, limit, offset int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, user := range r.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CreateRefreshToken(token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	r.refreshTokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.refreshTokens[token]
	if !ok {
		return nil, repositories.ErrRefreshTokenNotFound
	}
	copied := *rt
	return &copied, nil
}

func (r *fakeUserRepo) DeleteRefreshToken(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refreshTokens, token)
	return nil
}

func (r *fakeUserRepo) DeleteUserRefreshTokens(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, rt := range r.refreshTokens {
		if rt.UserID == userID {
			delete(r.refreshTokens, key)
		}
	}
	return nil
}

func (r *fakeUserRepo) CleanExpiredRefreshTokens() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for key, rt := range r.refreshTokens {
		if rt.ExpiresAt.Before(now) {
			delete(r.refreshTokens, key)
		}
	}
	return nil
}

// --- fakeProfileRepo ---

type fakeProfileRepo struct {
	mu          sync.Mutex
	profiles    map[string]*models.UserProfile       // по userID
	instructors map[string]*models.InstructorProfile // по userID
	learners    map[string]*models.LearnerProfile    // по userID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles:    make(map[string]*models.UserProfile),
		instructors: make(map[string]*models.InstructorProfile),
		learners:    make(map[string]*models.LearnerProfile),
	}
}

func (r *fakeProfileRepo) CreateProfile(profile *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.UserID]; ok {
		return repositories.ErrProfileAlreadyExists
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeProfileRepo) FindProfileByUserID(userID string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeProfileRepo) UpdateProfile(profile *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.UserID]; !ok {
		return repositories.ErrProfileNotFound
	}
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeProfileRepo) CreateInstructorProfile(profile *models.InstructorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instructors[profile.UserID]; ok {
		return repositories.ErrProfileAlreadyExists
	}
	for _, existing := range r.instructors {
		if existing.InstructorNumber == profile.InstructorNumber {
			return repositories.ErrInstructorNumberTaken
		}
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	r.instructors[profile.UserID] = profile
	return nil
}

func (r *fakeProfileRepo) FindInstructorByUserID(userID string) (*models.InstructorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.instructors[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeProfileRepo) CreateLearnerProfile(profile *models.LearnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.learners[profile.UserID]; ok {
		return repositories.ErrProfileAlreadyExists
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	r.learners[profile.UserID] = profile
	return nil
}

func (r *fakeProfileRepo) FindLearnerByUserID(userID string) (*models.LearnerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.learners[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeProfileRepo) UpdateLearnerProfile(profile *models.LearnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.learners[profile.UserID]; !ok {
		return repositories.ErrProfileNotFound
	}
	r.learners[profile.UserID] = profile
	return nil
}

// --- fakeStationRepo ---

type fakeStationRepo struct {
	mu       sync.Mutex
	stations map[string]*models.Station
}

func newFakeStationRepo() *fakeStationRepo {
	return &fakeStationRepo{stations: make(map[string]*models.Station)}
}

func (r *fakeStationRepo) addStation(station *models.Station) *models.Station {
	r.mu.Lock()
	defer r.mu.Unlock()
	if station.ID == "" {
		station.ID = uuid.NewString()
	}
	r.stations[station.ID] = station
	return station
}

func (r *fakeStationRepo) FindByID(id string) (*models.Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	station, ok := r.stations[id]
	if !ok {
		return nil, repositories.ErrStationNotFound
	}
	copied := *station
	return &copied, nil
}

func (r *fakeStationRepo) FindByName(name string) (*models.Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, station := range r.stations {
		if station.Name == name {
			copied := *station
			return &copied, nil
		}
	}
	return nil, repositories.ErrStationNotFound
}

func (r *fakeStationRepo) List() ([]models.Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Station
	for _, station := range r.stations {
		out = append(out, *station)
	}
	return out, nil
}

func (r *fakeStationRepo) Create(station *models.Station) error {
	r.addStation(station)
	return nil
}

func (r *fakeStationRepo) Update(station *models.Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stations[station.ID]; !ok {
		return repositories.ErrStationNotFound
	}
	r.stations[station.ID] = station
	return nil
}

// --- fakeBookingRepo ---

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.LearnerTestBooking
	stations *fakeStationRepo
}

func newFakeBookingRepo(stations *fakeStationRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[string]*models.LearnerTestBooking),
		stations: stations,
	}
}

// CreateAtomic повторяет транзакционную семантику SQL-реализации: проверка
// вместимости, пересечений и вставка под одним мьютексом.
func (r *fakeBookingRepo) CreateAtomic(booking *models.LearnerTestBooking, capacity int, slotStep time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.stations.FindByID(booking.StationID); err != nil {
		return repositories.ErrStationNotFound
	}

	var active, overlapping int64
	for _, b := range r.bookings {
		if !b.Status.IsActive() {
			continue
		}
		if b.StationID == booking.StationID && b.SlotTime.Equal(booking.SlotTime) {
			active++
		}
		if b.LearnerID == booking.LearnerID &&
			b.SlotTime.After(booking.SlotTime.Add(-slotStep)) &&
			b.SlotTime.Before(booking.SlotTime.Add(slotStep)) {
			overlapping++
		}
	}
	if active >= int64(capacity) {
		return repositories.ErrSlotCapacityReached
	}
	if overlapping > 0 {
		return repositories.ErrOverlappingBooking
	}

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.CreatedAt = time.Now()
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) FindByID(id string) (*models.LearnerTestBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, repositories.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) Update(booking *models.LearnerTestBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[booking.ID]; !ok {
		return repositories.ErrBookingNotFound
	}
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) CountActiveForSlot(stationID string, slotTime time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, b := range r.bookings {
		if b.StationID == stationID && b.SlotTime.Equal(slotTime) && b.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) ActiveCountsByRange(stationID string, from, to time.Time) ([]repositories.SlotCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bySlot := make(map[time.Time]int64)
	for _, b := range r.bookings {
		if b.StationID != stationID || !b.Status.IsActive() {
			continue
		}
		if b.SlotTime.Before(from) || !b.SlotTime.Before(to) {
			continue
		}
		bySlot[b.SlotTime.UTC()]++
	}
	out := make([]repositories.SlotCount, 0, len(bySlot))
	for slot, active := range bySlot {
		out = append(out, repositories.SlotCount{SlotTime: slot, Active: active})
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByLearner(learnerID string) ([]models.LearnerTestBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LearnerTestBooking
	for _, b := range r.bookings {
		if b.LearnerID == learnerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByStationAndRange(stationID string, from, to time.Time) ([]models.LearnerTestBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LearnerTestBooking
	for _, b := range r.bookings {
		if b.StationID == stationID && !b.SlotTime.Before(from) && b.SlotTime.Before(to) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByDate(date time.Time) ([]models.LearnerTestBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	var out []models.LearnerTestBooking
	for _, b := range r.bookings {
		if !b.SlotTime.Before(dayStart) && b.SlotTime.Before(dayEnd) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CancelStalePending(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cancelled int64
	for _, b := range r.bookings {
		if b.Status == models.BookingStatusPending && b.SlotTime.Before(cutoff) {
			b.Status = models.BookingStatusCancelled
			cancelled++
		}
	}
	return cancelled, nil
}

// --- fakeSecurityRepo ---

type fakeSecurityRepo struct {
	mu        sync.Mutex
	questions []models.SecurityQuestion
	answers   map[string][]models.UserSecurityAnswer // по userID
	tokens    map[string]*models.RecoveryToken       // по значению токена
}

func newFakeSecurityRepo() *fakeSecurityRepo {
	return &fakeSecurityRepo{
		answers: make(map[string][]models.UserSecurityAnswer),
		tokens:  make(map[string]*models.RecoveryToken),
	}
}

func (r *fakeSecurityRepo) addQuestion(text string) models.SecurityQuestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	question := models.SecurityQuestion{Question: text}
	question.ID = uuid.NewString()
	r.questions = append(r.questions, question)
	return question
}

func (r *fakeSecurityRepo) ListQuestions() ([]models.SecurityQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SecurityQuestion, len(r.questions))
	copy(out, r.questions)
	return out, nil
}

func (r *fakeSecurityRepo) FindQuestionByID(id string) (*models.SecurityQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.questions {
		if r.questions[i].ID == id {
			copied := r.questions[i]
			return &copied, nil
		}
	}
	return nil, repositories.ErrQuestionNotFound
}

func (r *fakeSecurityRepo) CreateAnswer(answer *models.UserSecurityAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.answers[answer.UserID] {
		if existing.QuestionID == answer.QuestionID {
			return repositories.ErrAnswerAlreadyExists
		}
	}
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	r.answers[answer.UserID] = append(r.answers[answer.UserID], *answer)
	return nil
}

func (r *fakeSecurityRepo) GetAnswers(userID string) ([]models.UserSecurityAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.UserSecurityAnswer, len(r.answers[userID]))
	copy(out, r.answers[userID])
	return out, nil
}

func (r *fakeSecurityRepo) CreateRecoveryToken(token *models.RecoveryToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeSecurityRepo) FindRecoveryToken(token string) (*models.RecoveryToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, repositories.ErrRecoveryTokenNotFound
	}
	copied := *rt
	return &copied, nil
}

func (r *fakeSecurityRepo) MarkRecoveryTokenUsed(id string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.tokens {
		if rt.ID == id {
			rt.UsedAt = &usedAt
			return nil
		}
	}
	return repositories.ErrRecoveryTokenNotFound
}

func (r *fakeSecurityRepo) DeleteExpiredRecoveryTokens() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for key, rt := range r.tokens {
		if rt.ExpiresAt.Before(now) {
			delete(r.tokens, key)
		}
	}
	return nil
}
