package client

// GuardResult — решение навигационного guard'а: пускать или
// перенаправлять
type GuardResult struct {
	Allowed    bool
	RedirectTo string
}

// RequireAuth пускает только авторизованных; остальных — на /login.
// Решение принимается по кэшированному флагу входа, без сети
func RequireAuth(s *Session) GuardResult {
	if s.LoggedIn() {
		return GuardResult{Allowed: true}
	}
	return GuardResult{RedirectTo: "/login"}
}

// RequireAnon закрывает страницы входа и регистрации от уже
// авторизованных: их перенаправляет на /home
func RequireAnon(s *Session) GuardResult {
	if s.LoggedIn() {
		return GuardResult{RedirectTo: "/home"}
	}
	return GuardResult{Allowed: true}
}
