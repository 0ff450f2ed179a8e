package models

// User представляет пользователя в системе.
// Поле password хранится захешированным (bcrypt); для старых записей,
// заведённых вручную в db.json, допускается открытый текст.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name"`
}

// WithoutPassword возвращает копию пользователя без пароля —
// именно в таком виде пользователь уходит в HTTP-ответы
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}
