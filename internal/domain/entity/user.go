package entity

import "time"

// User representa un usuario de la aplicación (colaborador externo al
// motor del ledger; solo registro/login).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Status       string // pending_verification | active
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
