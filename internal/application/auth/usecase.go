package auth

import (
	"context"
	"fmt"

	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Session lo que el caso de uso necesita del controlador de la aplicación.
type Session interface {
	Login(ctx context.Context, code, password string) (*entity.Employee, error)
	Logout(ctx context.Context) error
	Identity() *entity.Employee
}

// AuthUseCase casos de uso de autenticación: login, logout y validación de tokens.
// El token solo es válido mientras la sesión del dispositivo sea la del mismo empleado.
type AuthUseCase struct {
	session Session
	jwtCfg  JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(session Session, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{session: session, jwtCfg: jwtCfg}
}

// Login abre la sesión del dispositivo y genera el JWT del empleado.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (string, *entity.Employee, error) {
	emp, err := uc.session.Login(ctx, in.Code, in.Password)
	if err != nil {
		return "", nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, emp.ID, emp.Code, emp.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return "", nil, fmt.Errorf("generar token: %w", err)
	}
	return token, emp, nil
}

// Logout cierra la sesión del dispositivo; los tokens emitidos dejan de valer.
func (uc *AuthUseCase) Logout(ctx context.Context) error {
	return uc.session.Logout(ctx)
}

// Authorize valida el token y comprueba que su empleado sea la identidad en sesión.
func (uc *AuthUseCase) Authorize(token string) (*entity.Employee, error) {
	employeeID, _, _, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	identity := uc.session.Identity()
	if identity == nil {
		return nil, domain.ErrNotSignedIn
	}
	if identity.ID != employeeID {
		return nil, fmt.Errorf("%w: el token no corresponde a la sesión", domain.ErrUnauthorized)
	}
	return identity, nil
}
