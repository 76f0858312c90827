package auth

import (
	"context"
	"time"
)

// OTPSession es el estado pendiente de un registro: vive en un almacén con
// clave (email) y TTL explícito; se crea al iniciar el registro y se
// destruye al verificar o al expirar. Nada de estado ambiente del proceso.
type OTPSession struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Code         string    `json:"code"`
	CreatedAt    time.Time `json:"created_at"`
}

// OTPStore define el puerto del almacén de sesiones OTP con expiración.
type OTPStore interface {
	Put(ctx context.Context, session OTPSession, ttl time.Duration) error
	// Get devuelve nil si la sesión no existe o ya expiró.
	Get(ctx context.Context, email string) (*OTPSession, error)
	Delete(ctx context.Context, email string) error
}

// OTPSender entrega el código al usuario. La entrega real es de un proveedor
// de identidad externo; la implementación por defecto solo la registra en el log.
type OTPSender interface {
	Send(ctx context.Context, email, code string) error
}
