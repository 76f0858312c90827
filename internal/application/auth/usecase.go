package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stockmaster-api/internal/application/dto"
	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
	"github.com/tu-usuario/stockmaster-api/internal/domain/repository"
	"github.com/tu-usuario/stockmaster-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro con verificación OTP y login.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	otpStore  OTPStore
	otpSender OTPSender
	otpTTL    time.Duration
	jwtCfg    JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, otpStore OTPStore, otpSender OTPSender, otpTTL time.Duration, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{
		userRepo:  userRepo,
		otpStore:  otpStore,
		otpSender: otpSender,
		otpTTL:    otpTTL,
		jwtCfg:    jwtCfg,
	}
}

// StartRegistration inicia un registro: hashea el password, genera un código
// de 6 dígitos y crea la sesión OTP con TTL. El usuario NO se persiste hasta
// verificar. Reintentar el registro reemplaza la sesión anterior.
func (uc *AuthUseCase) StartRegistration(ctx context.Context, in dto.RegisterRequest) error {
	existing, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	code, err := generateCode()
	if err != nil {
		return err
	}
	session := OTPSession{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Code:         code,
		CreatedAt:    time.Now(),
	}
	if err := uc.otpStore.Put(ctx, session, uc.otpTTL); err != nil {
		return err
	}
	return uc.otpSender.Send(ctx, in.Email, code)
}

// VerifyRegistration valida el código, persiste el usuario y destruye la
// sesión OTP. Devuelve token + usuario (login implícito tras verificar).
func (uc *AuthUseCase) VerifyRegistration(ctx context.Context, in dto.VerifyRequest) (*dto.LoginResponse, error) {
	session, err := uc.otpStore.Get(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrOTPExpired
	}
	if session.Code != in.Code {
		return nil, domain.ErrOTPMismatch
	}
	now := time.Now()
	name := session.Name
	if name == "" {
		name = session.Email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        session.Email,
		PasswordHash: session.PasswordHash,
		Name:         name,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	_ = uc.otpStore.Delete(ctx, in.Email)

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// generateCode produce un código OTP de 6 dígitos con crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
