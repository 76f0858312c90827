// Package redis contiene el almacén de sesiones OTP sobre Redis: clave por
// email con TTL nativo (SET EX), para que la expiración funcione igual con
// varias réplicas del API.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/stockmaster-api/internal/application/auth"
)

var _ auth.OTPStore = (*OTPStore)(nil)

const otpKeyPrefix = "otp:session:"

// OTPStore implementación de auth.OTPStore sobre Redis.
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore construye el almacén con un cliente ya configurado.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

// NewClient crea el cliente Redis y verifica conectividad.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *OTPStore) Put(ctx context.Context, session auth.OTPSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("serializar sesión OTP: %w", err)
	}
	if err := s.client.Set(ctx, otpKeyPrefix+session.Email, payload, ttl).Err(); err != nil {
		return fmt.Errorf("guardar sesión OTP: %w", err)
	}
	return nil
}

// Get devuelve nil si la clave no existe (expirada o nunca creada).
func (s *OTPStore) Get(ctx context.Context, email string) (*auth.OTPSession, error) {
	payload, err := s.client.Get(ctx, otpKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer sesión OTP: %w", err)
	}
	var session auth.OTPSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("deserializar sesión OTP: %w", err)
	}
	return &session, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, otpKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("eliminar sesión OTP: %w", err)
	}
	return nil
}
