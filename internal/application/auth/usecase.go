package auth

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/application/ports"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login delegado al ERP: las credenciales se validan allá y el portal emite su JWT.
type AuthUseCase struct {
	erp    ports.AuthGateway
	jwtCfg JWTConfig
	log    zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(erp ports.AuthGateway, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{erp: erp, jwtCfg: jwtCfg, log: log}
}

// Login autentica contra el ERP, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.erp.Authenticate(ctx, username, in.Password)
	if err != nil {
		uc.log.Info().Str("username", username).Err(err).Msg("login rechazado")
		return nil, err
	}
	if user.Role == "" {
		user.Role = entity.RoleBuyer
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Branch:   user.Branch,
		Role:     user.Role,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
		User:      *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Branch:   u.Branch,
		Branches: u.Branches,
		Role:     u.Role,
	}
}
