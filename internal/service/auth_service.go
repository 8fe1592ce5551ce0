package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopmall-api/internal/model"
	"shopmall-api/internal/repository"
	"shopmall-api/pkg/jwt"
	"shopmall-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(req *LoginRequest) (*AuthResponse, error)
	// SocialLogin reports created=true when the call registered a new account
	SocialLogin(ctx context.Context, req *SocialLoginRequest) (resp *AuthResponse, created bool, err error)
	Verify(token string) (*jwt.Claims, error)
	CurrentUser(id uuid.UUID) (*model.User, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SocialLoginRequest carries an idToken for google. The other providers send
// the identity fields directly.
type SocialLoginRequest struct {
	Provider     string `json:"provider"`
	IDToken      string `json:"idToken"`
	SocialID     string `json:"socialId"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

type AuthResponse struct {
	Token string            `json:"token"`
	User  model.UserSummary `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	google   IDTokenVerifier
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, google IDTokenVerifier, log *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		google:   google,
		log:      log,
	}
}

func (s *authService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Social-only accounts have no hash, CheckPassword fails for them too
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) SocialLogin(ctx context.Context, req *SocialLoginRequest) (*AuthResponse, bool, error) {
	provider := model.SocialProvider(strings.ToLower(strings.TrimSpace(req.Provider)))
	if !provider.Valid() {
		return nil, false, invalid("unsupported social provider %q", req.Provider)
	}

	identity, err := s.resolveIdentity(ctx, provider, req)
	if err != nil {
		return nil, false, err
	}

	// (a) known social identity
	user, err := s.userRepo.FindBySocialIdentity(provider, identity.ID)
	if err == nil {
		resp, err := s.issue(user)
		return resp, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// (b)/(c) email already taken by another sign-in method
	existing, err := s.userRepo.FindByEmail(identity.Email)
	switch {
	case err == nil && existing.IsSocial():
		return nil, false, fmt.Errorf("%w: registered with %s", ErrAccountConflict, *existing.SocialProvider)
	case err == nil:
		return nil, false, fmt.Errorf("%w: use email and password login", ErrAccountConflict)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	// (d) new account
	socialID := identity.ID
	user = &model.User{
		Email:          model.NormalizeEmail(identity.Email),
		Name:           identity.Name,
		Role:           model.RoleCustomer,
		SocialProvider: &provider,
		SocialID:       &socialID,
		ProfileImage:   identity.Picture,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, fmt.Errorf("social account %w", ErrDuplicateKey)
		}
		return nil, false, err
	}

	s.log.Info("social account created",
		zap.String("user_id", user.ID.String()),
		zap.String("provider", string(provider)),
	)

	resp, err := s.issue(user)
	return resp, true, err
}

// resolveIdentity verifies google server-side. Kakao and facebook identities are
// taken from the request as sent.
func (s *authService) resolveIdentity(ctx context.Context, provider model.SocialProvider, req *SocialLoginRequest) (*SocialIdentity, error) {
	var identity *SocialIdentity
	if provider == model.ProviderGoogle {
		if strings.TrimSpace(req.IDToken) == "" {
			return nil, invalid("idToken is required for google login")
		}
		if s.google == nil {
			return nil, ErrProviderNotConfigured
		}
		verified, err := s.google.Verify(ctx, req.IDToken)
		if err != nil {
			if errors.Is(err, ErrProviderNotConfigured) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstreamVerification, err)
		}
		identity = verified
	} else {
		identity = &SocialIdentity{
			ID:      strings.TrimSpace(req.SocialID),
			Email:   req.Email,
			Name:    strings.TrimSpace(req.Name),
			Picture: req.ProfileImage,
		}
		if identity.Name == "" {
			return nil, invalid("socialId, email and name are required")
		}
	}

	if identity.ID == "" || !validator.IsEmail(identity.Email) {
		return nil, invalid("socialId, email and name are required")
	}
	if identity.Name == "" {
		identity.Name = strings.SplitN(identity.Email, "@", 2)[0]
	}
	return identity, nil
}

func (s *authService) Verify(token string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingToken) {
			return nil, ErrUnauthenticated
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) CurrentUser(id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *authService) issue(user *model.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Token: token, User: user.ToSummary()}, nil
}
