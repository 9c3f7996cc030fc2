package services

import (
	"context"
	"testing"
	"time"

	"dts_backend/internal/auth"
	"dts_backend/internal/config"
	"dts_backend/internal/models"
	"dts_backend/internal/ratelimit"
	"dts_backend/internal/services/dto"
	"dts_backend/pkg/apperrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recoveryTestEnv struct {
	service      RecoveryService
	userRepo     *fakeUserRepo
	securityRepo *fakeSecurityRepo
	redis        *miniredis.Miniredis
	cfg          *config.Config
}

func newRecoveryTestEnv(t *testing.T) *recoveryTestEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Recovery.TokenTTLMinutes = 15
	cfg.Recovery.MaxAttempts = 5
	cfg.Recovery.AttemptWindowMinutes = 15
	cfg.Recovery.MinAnswers = 2

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := ratelimit.NewRecoveryLimiter(redisClient, cfg.Recovery.MaxAttempts,
		time.Duration(cfg.Recovery.AttemptWindowMinutes)*time.Minute)

	userRepo := newFakeUserRepo()
	securityRepo := newFakeSecurityRepo()

	return &recoveryTestEnv{
		service:      NewRecoveryService(userRepo, securityRepo, limiter, cfg),
		userRepo:     userRepo,
		securityRepo: securityRepo,
		redis:        mr,
		cfg:          cfg,
	}
}

// seedAlice создает аккаунт alice с двумя зарегистрированными ответами:
// "blue" и "rex"
func (env *recoveryTestEnv) seedAlice(t *testing.T) (*models.User, []models.SecurityQuestion) {
	t.Helper()

	q1 := env.securityRepo.addQuestion("What was the name of your first pet?")
	q2 := env.securityRepo.addQuestion("In what city were you born?")
	env.securityRepo.addQuestion("What is your mother's maiden name?")

	hash, err := auth.HashPassword("old-password-1")
	require.NoError(t, err)
	alice := env.userRepo.addUser(&models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         models.UserRoleLearner,
		Status:       models.UserStatusActive,
	})

	for question, answer := range map[string]string{q2.ID: "blue", q1.ID: "rex"} {
		answerHash, err := auth.HashAnswer(answer)
		require.NoError(t, err)
		require.NoError(t, env.securityRepo.CreateAnswer(&models.UserSecurityAnswer{
			UserID:     alice.ID,
			QuestionID: question,
			AnswerHash: answerHash,
		}))
	}

	return alice, []models.SecurityQuestion{q1, q2}
}

func (env *recoveryTestEnv) answersFor(questions []models.SecurityQuestion, answers ...string) []dto.AnswerSubmission {
	out := make([]dto.AnswerSubmission, 0, len(answers))
	for i, answer := range answers {
		out = append(out, dto.AnswerSubmission{QuestionID: questions[i].ID, Answer: answer})
	}
	return out
}

func TestStartRecovery_KnownUser(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, questions := env.seedAlice(t)

	res, err := env.service.StartRecovery(context.Background(), "alice")
	require.NoError(t, err)

	// Возвращаются именно вопросы, на которые Алиса регистрировала ответы
	require.Len(t, res.Questions, 2)
	got := map[string]bool{}
	for _, prompt := range res.Questions {
		got[prompt.QuestionID] = true
		assert.NotEmpty(t, prompt.Question)
	}
	assert.True(t, got[questions[0].ID])
	assert.True(t, got[questions[1].ID])
}

// TestStartRecovery_UnknownUserUniform - для неизвестного имени ответ
// неотличим от настоящего: тот же формат, то же число вопросов,
// стабильный набор при повторных запросах
func TestStartRecovery_UnknownUserUniform(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, _ = env.seedAlice(t)

	known, err := env.service.StartRecovery(context.Background(), "alice")
	require.NoError(t, err)

	unknown, err := env.service.StartRecovery(context.Background(), "no-such-user")
	require.NoError(t, err)

	// 1. Формат и сообщение совпадают
	assert.Equal(t, known.Message, unknown.Message)
	assert.Len(t, unknown.Questions, len(known.Questions))

	// 2. Повторный запрос дает тот же набор вопросов
	again, err := env.service.StartRecovery(context.Background(), "no-such-user")
	require.NoError(t, err)
	assert.Equal(t, unknown.Questions, again.Questions)
}

func TestVerifyAnswers_Success(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, questions := env.seedAlice(t)

	res, err := env.service.VerifyAnswers(context.Background(), &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions, "rex", "blue"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, res.RecoveryToken)
	assert.True(t, res.ExpiresAt.After(time.Now()))
}

// Нормализация: регистр и пробелы в ответах не значимы
func TestVerifyAnswers_NormalizedAnswers(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, questions := env.seedAlice(t)

	_, err := env.service.VerifyAnswers(context.Background(), &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions, "  REX ", "Blue"),
	})
	assert.NoError(t, err)
}

func TestVerifyAnswers_WrongAnswerFails(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, questions := env.seedAlice(t)

	_, err := env.service.VerifyAnswers(context.Background(), &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions, "rex", "green"),
	})
	assert.ErrorIs(t, err, apperrors.ErrRecoveryFailed)
}

// Подмножество вопросов не принимается, даже если все ответы верны
func TestVerifyAnswers_PartialSetFails(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, questions := env.seedAlice(t)

	_, err := env.service.VerifyAnswers(context.Background(), &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions[:1], "rex"),
	})
	assert.ErrorIs(t, err, apperrors.ErrRecoveryFailed)
}

// Для неизвестного аккаунта ошибка та же самая, что и при неверном ответе
func TestVerifyAnswers_UnknownUserSameError(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, questions := env.seedAlice(t)

	_, err := env.service.VerifyAnswers(context.Background(), &dto.VerifyAnswersRequest{
		Username: "no-such-user",
		Answers:  env.answersFor(questions, "rex", "blue"),
	})
	assert.ErrorIs(t, err, apperrors.ErrRecoveryFailed)
}

// TestVerifyAnswers_RateLimit - после порога неудач даже верные ответы
// получают RATE_LIMITED
func TestVerifyAnswers_RateLimit(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, questions := env.seedAlice(t)
	ctx := context.Background()

	// 1. Исчерпываем лимит неверными ответами
	for i := 0; i < env.cfg.Recovery.MaxAttempts; i++ {
		_, err := env.service.VerifyAnswers(ctx, &dto.VerifyAnswersRequest{
			Username: "alice",
			Answers:  env.answersFor(questions, "wrong", "wrong"),
		})
		require.ErrorIs(t, err, apperrors.ErrRecoveryFailed)
	}

	// 2. Верные ответы теперь тоже отклоняются
	_, err := env.service.VerifyAnswers(ctx, &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions, "rex", "blue"),
	})
	assert.ErrorIs(t, err, apperrors.ErrRecoveryRateLimited)

	// 3. По истечении окна счетчик сбрасывается и попытки снова доступны
	env.redis.FastForward(16 * time.Minute)
	_, err = env.service.VerifyAnswers(ctx, &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions, "rex", "blue"),
	})
	assert.NoError(t, err)
}

// Успешная проверка сбрасывает накопленные неудачи
func TestVerifyAnswers_SuccessResetsCounter(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	_, questions := env.seedAlice(t)
	ctx := context.Background()

	for i := 0; i < env.cfg.Recovery.MaxAttempts-1; i++ {
		_, err := env.service.VerifyAnswers(ctx, &dto.VerifyAnswersRequest{
			Username: "alice",
			Answers:  env.answersFor(questions, "wrong", "wrong"),
		})
		require.ErrorIs(t, err, apperrors.ErrRecoveryFailed)
	}

	_, err := env.service.VerifyAnswers(ctx, &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions, "rex", "blue"),
	})
	require.NoError(t, err)

	// Счетчик обнулен, неудачные попытки снова не упираются в лимит
	for i := 0; i < env.cfg.Recovery.MaxAttempts-1; i++ {
		_, err := env.service.VerifyAnswers(ctx, &dto.VerifyAnswersRequest{
			Username: "alice",
			Answers:  env.answersFor(questions, "wrong", "wrong"),
		})
		require.ErrorIs(t, err, apperrors.ErrRecoveryFailed)
	}
}

func TestResetPassword_FullFlow(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	alice, questions := env.seedAlice(t)
	ctx := context.Background()

	// 1. Получаем токен через верные ответы
	verified, err := env.service.VerifyAnswers(ctx, &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions, "rex", "blue"),
	})
	require.NoError(t, err)

	// 2. Сбрасываем пароль
	err = env.service.ResetPassword(ctx, &dto.ResetPasswordRequest{
		RecoveryToken: verified.RecoveryToken,
		NewPassword:   "brand-new-pass-9",
	})
	require.NoError(t, err)

	// 3. Хеш пароля обновлен
	updated, err := env.userRepo.FindByID(alice.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPasswordHash("brand-new-pass-9", updated.PasswordHash))
	assert.False(t, auth.CheckPasswordHash("old-password-1", updated.PasswordHash))

	// 4. Токен одноразовый: повторное использование отклоняется
	err = env.service.ResetPassword(ctx, &dto.ResetPasswordRequest{
		RecoveryToken: verified.RecoveryToken,
		NewPassword:   "another-pass-10",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecoveryToken)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	alice, _ := env.seedAlice(t)

	// Токен с прошедшим сроком действия
	expired := &models.RecoveryToken{
		UserID:    alice.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, env.securityRepo.CreateRecoveryToken(expired))

	err := env.service.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		RecoveryToken: "expired-token",
		NewPassword:   "brand-new-pass-9",
	})
	assert.ErrorIs(t, err, apperrors.ErrRecoveryTokenExpired)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	env.seedAlice(t)

	err := env.service.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		RecoveryToken: "no-such-token",
		NewPassword:   "brand-new-pass-9",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecoveryToken)
}

func TestResetPassword_RevokesRefreshTokens(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	alice, questions := env.seedAlice(t)
	ctx := context.Background()

	require.NoError(t, env.userRepo.CreateRefreshToken(&models.RefreshToken{
		UserID:    alice.ID,
		Token:     "session-1",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}))

	verified, err := env.service.VerifyAnswers(ctx, &dto.VerifyAnswersRequest{
		Username: "alice",
		Answers:  env.answersFor(questions, "rex", "blue"),
	})
	require.NoError(t, err)
	require.NoError(t, env.service.ResetPassword(ctx, &dto.ResetPasswordRequest{
		RecoveryToken: verified.RecoveryToken,
		NewPassword:   "brand-new-pass-9",
	}))

	// Все сессии отозваны вместе со сменой пароля
	_, err = env.userRepo.FindRefreshToken("session-1")
	assert.Error(t, err)
}

func TestRegisterAnswer(t *testing.T) {
	t.Parallel()

	env := newRecoveryTestEnv(t)
	question := env.securityRepo.addQuestion("What was the name of your first pet?")
	user := env.userRepo.addUser(&models.User{Username: "bob", Email: "bob@example.com"})

	// 1. Регистрация ответа проходит
	err := env.service.RegisterAnswer(user.ID, &dto.RegisterAnswerRequest{
		QuestionID: question.ID,
		Answer:     "Rex",
	})
	require.NoError(t, err)

	// 2. В хранилище попадает bcrypt-хеш нормализованного ответа, не открытый текст
	answers, err := env.securityRepo.GetAnswers(user.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.NotContains(t, answers[0].AnswerHash, "Rex")
	assert.True(t, auth.CheckAnswerHash("rex", answers[0].AnswerHash))

	// 3. Повторный ответ на тот же вопрос отклоняется
	err = env.service.RegisterAnswer(user.ID, &dto.RegisterAnswerRequest{
		QuestionID: question.ID,
		Answer:     "Buddy",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAlreadyExists, appErr.Code)

	// 4. Неизвестный вопрос отклоняется
	err = env.service.RegisterAnswer(user.ID, &dto.RegisterAnswerRequest{
		QuestionID: "00000000-0000-0000-0000-000000000000",
		Answer:     "Rex",
	})
	require.Error(t, err)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
