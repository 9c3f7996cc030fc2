package services

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"dts_backend/internal/auth"
	"dts_backend/internal/config"
	"dts_backend/internal/logger"
	"dts_backend/internal/models"
	"dts_backend/internal/ratelimit"
	"dts_backend/internal/repositories"
	"dts_backend/internal/services/dto"
	"dts_backend/pkg/apperrors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyAnswerHash - bcrypt хеш, против которого сравниваются ответы для
// несуществующих аккаунтов. Выравнивает время ответа обеих веток.
var dummyAnswerHash, _ = bcrypt.GenerateFromPassword([]byte("recovery-decoy"), bcrypt.DefaultCost)

type RecoveryService interface {
	StartRecovery(ctx context.Context, username string) (*dto.RecoveryQuestionsResponse, error)
	VerifyAnswers(ctx context.Context, req *dto.VerifyAnswersRequest) (*dto.RecoveryTokenResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	RegisterAnswer(userID string, req *dto.RegisterAnswerRequest) error
	ListQuestions() ([]dto.QuestionPrompt, error)
}

type RecoveryServiceImpl struct {
	userRepo     repositories.UserRepository
	securityRepo repositories.SecurityRepository
	limiter      *ratelimit.RecoveryLimiter
	cfg          *config.Config
}

func NewRecoveryService(
	userRepo repositories.UserRepository,
	securityRepo repositories.SecurityRepository,
	limiter *ratelimit.RecoveryLimiter,
	cfg *config.Config,
) RecoveryService {
	return &RecoveryServiceImpl{
		userRepo:     userRepo,
		securityRepo: securityRepo,
		limiter:      limiter,
		cfg:          cfg,
	}
}

const recoveryStartMessage = "Answer your security questions to continue"

// StartRecovery - первый шаг восстановления. Контракт единый: и для
// существующего, и для неизвестного аккаунта возвращается один и тот же
// формат ответа, чтобы по нему нельзя было перечислять имена пользователей.
func (s *RecoveryServiceImpl) StartRecovery(ctx context.Context, username string) (*dto.RecoveryQuestionsResponse, error) {
	prompts, known, err := s.promptsFor(username)
	if err != nil {
		return nil, err
	}

	logger.Audit("recovery_started",
		"username", strings.ToLower(username),
		"account_found", known,
	)

	return &dto.RecoveryQuestionsResponse{
		Message:   recoveryStartMessage,
		Questions: prompts,
	}, nil
}

// VerifyAnswers - проверка упорядоченного списка ответов. Любой провал
// (неизвестный аккаунт, несовпадение набора вопросов, неверный ответ)
// возвращается как один и тот же ErrRecoveryFailed.
func (s *RecoveryServiceImpl) VerifyAnswers(ctx context.Context, req *dto.VerifyAnswersRequest) (*dto.RecoveryTokenResponse, error) {
	// Лимит проверяется ДО ответов: после порога даже верные ответы
	// получают RateLimited
	allowed, err := s.limiter.Allowed(ctx, req.Username)
	if err != nil {
		return nil, apperrors.UnavailableError(err)
	}
	if !allowed {
		logger.Audit("recovery_rate_limited", "username", strings.ToLower(req.Username))
		return nil, apperrors.ErrRecoveryRateLimited
	}

	user, answers, usable := s.lookupAccount(req.Username)

	matched := s.compareAnswers(req.Answers, answers, usable)

	if !usable || !matched {
		if err := s.limiter.RecordFailure(ctx, req.Username); err != nil {
			return nil, apperrors.UnavailableError(err)
		}
		logger.Audit("recovery_verify_failed",
			"username", strings.ToLower(req.Username),
			"answers_submitted", len(req.Answers),
		)
		return nil, apperrors.ErrRecoveryFailed
	}

	if err := s.limiter.Reset(ctx, req.Username); err != nil {
		return nil, apperrors.UnavailableError(err)
	}

	token := &models.RecoveryToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Recovery.TokenTTLMinutes) * time.Minute),
	}
	if err := s.securityRepo.CreateRecoveryToken(token); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Audit("recovery_verify_succeeded", "user_id", user.ID)

	return &dto.RecoveryTokenResponse{
		RecoveryToken: token.Token,
		ExpiresAt:     token.ExpiresAt,
	}, nil
}

// ResetPassword - финальный шаг: применяет новый пароль и гасит токен.
// Токен одноразовый, повторное использование дает InvalidToken.
func (s *RecoveryServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	token, err := s.securityRepo.FindRecoveryToken(req.RecoveryToken)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRecoveryTokenNotFound) {
			return apperrors.ErrInvalidRecoveryToken
		}
		return apperrors.InternalError(err)
	}

	if token.UsedAt != nil {
		return apperrors.ErrInvalidRecoveryToken
	}
	if time.Now().After(token.ExpiresAt) {
		return apperrors.ErrRecoveryTokenExpired
	}

	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePasswordHash(token.UserID, hash); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.securityRepo.MarkRecoveryTokenUsed(token.ID, time.Now()); err != nil {
		return apperrors.InternalError(err)
	}

	// Все выданные сессии гасим вместе со сменой пароля
	if err := s.userRepo.DeleteUserRefreshTokens(token.UserID); err != nil {
		logger.Warn("failed to revoke refresh tokens after password reset",
			"user_id", token.UserID, "error", err)
	}

	logger.Audit("password_reset", "user_id", token.UserID)
	return nil
}

// RegisterAnswer - регистрация ответа на контрольный вопрос при онбординге
func (s *RecoveryServiceImpl) RegisterAnswer(userID string, req *dto.RegisterAnswerRequest) error {
	if _, err := s.securityRepo.FindQuestionByID(req.QuestionID); err != nil {
		if apperrors.Is(err, repositories.ErrQuestionNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	hash, err := auth.HashAnswer(req.Answer)
	if err != nil {
		return apperrors.InternalError(err)
	}

	answer := &models.UserSecurityAnswer{
		UserID:     userID,
		QuestionID: req.QuestionID,
		AnswerHash: hash,
	}
	if err := s.securityRepo.CreateAnswer(answer); err != nil {
		if apperrors.Is(err, repositories.ErrAnswerAlreadyExists) {
			return apperrors.ErrAlreadyExists(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *RecoveryServiceImpl) ListQuestions() ([]dto.QuestionPrompt, error) {
	questions, err := s.securityRepo.ListQuestions()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	prompts := make([]dto.QuestionPrompt, 0, len(questions))
	for _, q := range questions {
		prompts = append(prompts, dto.QuestionPrompt{QuestionID: q.ID, Question: q.Question})
	}
	return prompts, nil
}

// --- Внутренние помощники ---

// lookupAccount возвращает пользователя и его ответы, если аккаунт
// существует и зарегистрировал достаточный минимум ответов
func (s *RecoveryServiceImpl) lookupAccount(username string) (*models.User, []models.UserSecurityAnswer, bool) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, nil, false
	}

	answers, err := s.securityRepo.GetAnswers(user.ID)
	if err != nil || len(answers) < s.cfg.Recovery.MinAnswers {
		return nil, nil, false
	}
	return user, answers, true
}

// compareAnswers сравнивает ВСЕ представленные ответы без раннего выхода,
// чтобы время ответа не указывало, какой именно ответ неверен.
// Для неиспользуемого аккаунта сравнения идут против dummy-хеша.
func (s *RecoveryServiceImpl) compareAnswers(submitted []dto.AnswerSubmission, registered []models.UserSecurityAnswer, usable bool) bool {
	if !usable {
		for _, sub := range submitted {
			auth.CheckAnswerHash(sub.Answer, string(dummyAnswerHash))
		}
		return false
	}

	// Набор вопросов должен совпадать точно
	hashByQuestion := make(map[string]string, len(registered))
	for _, answer := range registered {
		hashByQuestion[answer.QuestionID] = answer.AnswerHash
	}

	matched := len(submitted) == len(registered)
	seen := make(map[string]bool, len(submitted))

	for _, sub := range submitted {
		hash, ok := hashByQuestion[sub.QuestionID]
		if !ok || seen[sub.QuestionID] {
			auth.CheckAnswerHash(sub.Answer, string(dummyAnswerHash))
			matched = false
			continue
		}
		seen[sub.QuestionID] = true

		if !auth.CheckAnswerHash(sub.Answer, hash) {
			matched = false
		}
	}
	return matched
}

// promptsFor возвращает вопросы аккаунта либо стабильный набор-приманку.
// Приманка детерминирована по имени: повторные запросы дают одинаковые
// вопросы, что не отличимо от настоящего аккаунта.
func (s *RecoveryServiceImpl) promptsFor(username string) ([]dto.QuestionPrompt, bool, error) {
	catalog, err := s.securityRepo.ListQuestions()
	if err != nil {
		return nil, false, apperrors.InternalError(err)
	}

	if user, err := s.userRepo.FindByUsername(username); err == nil {
		answers, err := s.securityRepo.GetAnswers(user.ID)
		if err == nil && len(answers) >= s.cfg.Recovery.MinAnswers {
			byID := make(map[string]string, len(catalog))
			for _, q := range catalog {
				byID[q.ID] = q.Question
			}
			prompts := make([]dto.QuestionPrompt, 0, len(answers))
			for _, answer := range answers {
				prompts = append(prompts, dto.QuestionPrompt{
					QuestionID: answer.QuestionID,
					Question:   byID[answer.QuestionID],
				})
			}
			return prompts, true, nil
		}
	}

	return decoyPrompts(username, catalog, s.cfg.Recovery.MinAnswers), false, nil
}

func decoyPrompts(username string, catalog []models.SecurityQuestion, count int) []dto.QuestionPrompt {
	if len(catalog) == 0 {
		return []dto.QuestionPrompt{}
	}
	if count > len(catalog) {
		count = len(catalog)
	}

	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(username))))
	seed := h.Sum64()

	prompts := make([]dto.QuestionPrompt, 0, count)
	used := make(map[int]bool, count)
	for i := 0; len(prompts) < count; i++ {
		idx := int((seed + uint64(i)) % uint64(len(catalog)))
		if used[idx] {
			continue
		}
		used[idx] = true
		prompts = append(prompts, dto.QuestionPrompt{
			QuestionID: catalog[idx].ID,
			Question:   catalog[idx].Question,
		})
	}
	return prompts
}
