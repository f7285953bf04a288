package service

import (
	"context"

	"github.com/pulsechat/pulse/internal/config"
	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/internal/repository"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/jwt"
)

// Principal is the authenticated identity attached to a connection or
// request after verification succeeds (§4.1).
type Principal struct {
	Subject     string
	Email       string
	DisplayName string
}

// AuthService is the Auth Verifier: it checks a bearer credential's
// signature and expiry, then resolves the subject against the User
// repository so that tokens for since-deleted users also fail closed.
type AuthService struct {
	userRepo *repository.UserRepo
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepo, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, cfg: cfg}
}

// Verify validates tokenString and resolves it to a Principal. A bad token or
// an unknown subject yields an *errcode.Error with KindUnauthenticated; a
// failed user lookup yields ErrInternal (KindDependencyFailure).
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := jwt.ParseToken(tokenString, s.cfg.Auth.Secret)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetById(ctx, claims.Subject)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if user == nil {
		return nil, errcode.ErrUserNotFound
	}

	return &Principal{Subject: user.Id, Email: user.Email, DisplayName: user.DisplayName}, nil
}

// Sync implements POST /auth/sync: upserts the user identified by the
// external identity provider. Returns the stored UserInfo.
func (s *AuthService) Sync(ctx context.Context, id, email, name, imageUrl string) (*entity.UserInfo, error) {
	u := &entity.User{Id: id, Email: email, DisplayName: name, ImageUrl: imageUrl}
	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	stored, err := s.userRepo.GetById(ctx, id)
	if err != nil || stored == nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	return stored.ToUserInfo(), nil
}

// Me implements GET /auth/me.
func (s *AuthService) Me(ctx context.Context, subject string) (*entity.UserInfo, error) {
	u, err := s.userRepo.GetById(ctx, subject)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if u == nil {
		return nil, errcode.ErrUserNotFound
	}
	return u.ToUserInfo(), nil
}

// Disconnect updates lastSeenAt on clean disconnect (§4.4 Disconnect).
func (s *AuthService) Disconnect(ctx context.Context, subject string) error {
	return s.userRepo.TouchLastSeen(ctx, subject, entity.NowUnixMilli())
}
