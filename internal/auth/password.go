package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword создает bcrypt хеш пароля
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash проверяет пароль против хеша
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword проверяет сложность пароля
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}

// HashAnswer создает bcrypt хеш ответа на контрольный вопрос.
// Ответ нормализуется (регистр и пробелы), чтобы "Rex " и "rex" совпадали.
func HashAnswer(answer string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(NormalizeAnswer(answer)), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckAnswerHash проверяет ответ против хеша. Сравнение внутри bcrypt
// выполняется за постоянное время независимо от места расхождения.
func CheckAnswerHash(answer, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(NormalizeAnswer(answer)))
	return err == nil
}

// NormalizeAnswer приводит ответ к каноничному виду перед хешированием
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// ConstantTimeEquals сравнивает два токена за постоянное время
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
