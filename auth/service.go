package auth

import (
	"arcade/domain"
	"context"
	"regexp"
	"time"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 64
)

var usernameFormat = regexp.MustCompile("^[a-z0-9_]{3,20}$")

type service struct {
	userRepo       UserRepo
	passwordHasher PasswordHasher
	tokenManager   TokenManager
	now            func() time.Time
}

func NewService(userRepo UserRepo, passwordHasher PasswordHasher, tokenManager TokenManager) *service {
	return &service{
		userRepo:       userRepo,
		passwordHasher: passwordHasher,
		tokenManager:   tokenManager,
		now:            time.Now,
	}
}

// Signup creates the account and returns a session token for it.
func (as *service) Signup(ctx context.Context, username, password string) (string, error) {
	if !usernameFormat.MatchString(username) {
		return "", ErrInvalidUsernameFormat
	}

	n := utf8.RuneCountInString(password)
	if n < minPasswordLength {
		return "", ErrWeakPassword
	}
	if n > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := as.passwordHasher.Hash(password)
	if err != nil {
		return "", err
	}

	id, err := as.userRepo.CreateUser(ctx, username, hash)
	if err != nil {
		return "", err
	}

	return as.GenerateToken(id)
}

func (as *service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := as.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	match, err := as.passwordHasher.Compare(user.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !match {
		return "", ErrIncorrectPassword
	}

	return as.GenerateToken(user.Id)
}

// VerifyToken returns the user id the token was issued for.
func (as *service) VerifyToken(token string) (string, error) {
	return as.tokenManager.Verify(token)
}

func (as *service) GenerateToken(id string) (string, error) {
	return as.tokenManager.Generate(id, as.now())
}

func (as *service) Me(ctx context.Context, id string) (domain.User, error) {
	return as.userRepo.GetUserById(ctx, id)
}
