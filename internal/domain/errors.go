package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrUserNotFound            = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists      = errors.New("el email ya está registrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInvalidStatusTransition = errors.New("transición de estado inválida")
	ErrConcurrencyConflict     = errors.New("conflicto de concurrencia, snapshot obsoleto")
	ErrOperationConflict       = errors.New("operación en conflicto, reintentos agotados")
	ErrOTPExpired              = errors.New("código de verificación expirado o inexistente")
	ErrOTPMismatch             = errors.New("código de verificación incorrecto")
)

// ValidationError detalla qué campo de la operación es inválido.
// Envuelve ErrInvalidInput para que errors.Is siga funcionando.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError detalla el stock disponible frente al solicitado
// para que el caller pueda renderizar un mensaje preciso.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en bodega %s: disponible %d, solicitado %d",
		e.WarehouseID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StatusTransitionError detalla una transición de estado rechazada.
type StatusTransitionError struct {
	OperationType string
	From          string
	To            string
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("transición inválida para %s: %s -> %s", e.OperationType, e.From, e.To)
}

func (e *StatusTransitionError) Unwrap() error { return ErrInvalidStatusTransition }
