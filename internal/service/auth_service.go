package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
	"github.com/domo-app/domo-server/internal/util"
)

// ErrInvalidCredentials is returned for any login failure. The cause
// (unknown login id vs. wrong password) is deliberately not exposed.
var ErrInvalidCredentials = errors.New("invalid login id or password")

type AuthService struct {
	users     UserStore
	jwtSecret string
}

func NewAuthService(users UserStore, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret}
}

type RegisterInput struct {
	LoginID  string
	Password string
	Name     string
	Email    string
}

// Register creates a new user and returns its id.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (int, error) {
	existing, err := s.users.FindByLoginID(ctx, in.LoginID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.InvalidState("login id is already in use")
	}

	existing, err = s.users.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.InvalidState("email is already in use")
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return 0, err
	}

	return s.users.Insert(ctx, &model.User{
		LoginID:      in.LoginID,
		PasswordHash: hash,
		Name:         in.Name,
		Email:        in.Email,
	})
}

// Login checks credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, loginID, password string) (string, error) {
	u, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !util.CheckPassword(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return util.GenerateJWT(u.ID, s.jwtSecret)
}

// ChangePassword swaps the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !util.CheckPassword(oldPassword, u.PasswordHash) {
		return apperr.InvalidState("current password does not match")
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}
