package notifier

import (
	"context"

	"github.com/tu-usuario/stockmaster-api/pkg/logger"
)

// LogOTPSender escribe el código OTP en el log en lugar de enviarlo.
// Sirve como default de desarrollo hasta integrar un proveedor de email/SMS.
type LogOTPSender struct {
	log *logger.Logger
}

// NewLogOTPSender construye el sender de desarrollo.
func NewLogOTPSender(log *logger.Logger) *LogOTPSender {
	return &LogOTPSender{log: log}
}

// Send registra el código en el log.
func (s *LogOTPSender) Send(ctx context.Context, email, code string) error {
	s.log.Info().Str("email", email).Str("code", code).Msg("código OTP generado")
	return nil
}
