package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Токен доступа — непрозрачный маркер вида "token-<userId>-<epochMillis>".
// Это не криптографический материал: клиент хранит его как признак
// «авторизован как такой-то пользователь с такого-то момента»,
// сервер лишь извлекает из него id пользователя

var ErrInvalidToken = errors.New("некорректный токен")

var tokenPattern = regexp.MustCompile(`^token-(\d+)-\d+$`)

// GenerateAccessToken создаёт токен доступа для пользователя
func GenerateAccessToken(userID int) string {
	return fmt.Sprintf("token-%d-%d", userID, time.Now().UnixMilli())
}

// ParseAccessToken извлекает id пользователя из токена
func ParseAccessToken(token string) (int, error) {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.Atoi(m[1])
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
