package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword хеширует пароль bcrypt'ом
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword проверяет пароль в двух режимах: значения с префиксом
// "$2a$"/"$2b$" сравниваются как bcrypt-хеши, всё остальное — как
// открытый текст. Второй режим оставлен намеренно: в db.json могут
// лежать старые записи с незахешированными паролями
func CheckPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == password
}
