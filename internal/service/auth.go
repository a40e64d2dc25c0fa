package service

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/habit-tracker/internal/mailer"
	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // в байтах: bcrypt не принимает пароли длиннее

	verifyTokenTTL = 24 * time.Hour
	verifyPurpose  = "verify_email"
)

// dummyHash сравнивается при неизвестном email, чтобы время ответа не выдавало наличие пользователя
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type AuthService struct {
	users   repo.UserRepository
	mailer  mailer.Mailer
	secret  []byte
	baseURL string
	cost    int
	logger  *zap.Logger
}

func NewAuthService(users repo.UserRepository, m mailer.Mailer, secret, baseURL string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:   users,
		mailer:  m,
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		cost:    bcrypt.DefaultCost,
		logger:  logger,
	}
}

// Register создает пользователя и отправляет письмо для подтверждения email
func (s *AuthService) Register(ctx context.Context, email, password string) (model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.User{}, err
	}
	if n := len(password); n < minPasswordLen || n > maxPasswordLen {
		return model.User{}, fmt.Errorf("%w: password must be %d-%d characters", ErrValidation, minPasswordLen, maxPasswordLen)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return model.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrorNotFound) {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{Email: email, PasswordHash: string(hash)})
	if errors.Is(err, repo.ErrorConflict) { // гонка двух регистраций
		return model.User{}, ErrDuplicateEmail
	}
	if err != nil {
		return model.User{}, err
	}

	s.sendVerification(ctx, user)
	return user, nil
}

// Login never tells an unknown email apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.User{}, err
	}
	if password == "" {
		return model.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrorNotFound) {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) User(ctx context.Context, id int64) (model.User, error) {
	return s.users.Get(ctx, id)
}

func (s *AuthService) VerificationToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"pur": verifyPurpose,
		"exp": time.Now().Add(verifyTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify отмечает email пользователя как подтвержденный
func (s *AuthService) Verify(ctx context.Context, token string) (model.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return model.User{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["pur"] != verifyPurpose {
		return model.User{}, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return model.User{}, ErrInvalidToken
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return model.User{}, ErrInvalidToken
	}

	if err := s.users.SetVerified(ctx, id); err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return model.User{}, ErrInvalidToken
		}
		return model.User{}, err
	}
	return s.users.Get(ctx, id)
}

func (s *AuthService) sendVerification(ctx context.Context, u model.User) {
	token, err := s.VerificationToken(u.ID)
	if err != nil {
		s.logger.Error("verification token", zap.Int64("user_id", u.ID), zap.Error(err))
		return
	}
	link := s.baseURL + "/verify?token=" + url.QueryEscape(token)

	// Письмо не критично: ошибка только логируется
	if err := s.mailer.SendVerification(ctx, u.Email, link); err != nil {
		s.logger.Warn("verification email failed", zap.Int64("user_id", u.ID), zap.Error(err))
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return email, nil
}
