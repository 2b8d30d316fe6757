// Package auth содержит логику бизнес-уровня для регистрации,
// аутентификации и восстановления пароля пользователей.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/fademebets/fademebets-backend/internal/domain"
	"github.com/fademebets/fademebets-backend/internal/lib/jwt"
	"github.com/fademebets/fademebets-backend/internal/lib/password"
	"github.com/fademebets/fademebets-backend/internal/lib/sl"
	"github.com/fademebets/fademebets-backend/internal/models"
)

// Срок действия кода восстановления пароля.
const resetCodeTTL = 10 * time.Minute

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	SetResetCode(ctx context.Context, email, code string, expiry time.Time) error
	UpdatePasswordAndClearResetCode(ctx context.Context, email, passwordHash string) error
	UpdateSubscriptionStatusByUID(ctx context.Context, userUID, status string) error
}

// NotificationPublisher публикует сообщения для воркера рассылки.
type NotificationPublisher interface {
	Publish(routingKey string, message any) error
}

// Service отвечает за регистрацию, авторизацию и восстановление пароля.
type Service struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	publisher NotificationPublisher
	log       *slog.Logger
}

// New создает новый экземпляр сервиса аутентификации.
func New(users UserRepository, jwtMaker jwt.Maker, publisher NotificationPublisher, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		jwtMaker:  jwtMaker,
		publisher: publisher,
		log:       log,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
// Подписка нового пользователя неактивна до первой оплаты.
func (s *Service) Register(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "auth.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:              email,
		PasswordHash:       hashed,
		Role:               "user",
		SubscriptionStatus: models.SubscriptionInactive,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Возвращает токен и текущий статус подписки.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, string, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", "", fmt.Errorf("%s: %w", op, domain.ErrInvalidCredentials)
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, domain.ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.Email, user.UID, user.SubscriptionStatus)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.SubscriptionStatus, nil
}

// SubscriptionStatus возвращает текущий статус подписки пользователя.
func (s *Service) SubscriptionStatus(ctx context.Context, userUID string) (string, error) {
	const op = "auth.SubscriptionStatus"
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return user.SubscriptionStatus, nil
}

// Unsubscribe переводит подписку пользователя в неактивное состояние.
func (s *Service) Unsubscribe(ctx context.Context, userUID string) error {
	const op = "auth.Unsubscribe"
	if err := s.users.UpdateSubscriptionStatusByUID(ctx, userUID, models.SubscriptionInactive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user unsubscribed", slog.String("op", op), slog.String("uid", userUID))
	return nil
}

// ForgotPassword генерирует шестизначный код восстановления, сохраняет его
// со сроком действия и публикует сообщение для отправки письма.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"
	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	expiry := time.Now().UTC().Add(resetCodeTTL)
	if err := s.users.SetResetCode(ctx, email, code, expiry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.publisher.Publish("reset-code", models.ResetCodeMessage{
		Email: email,
		Code:  code,
	})
	if err != nil {
		s.log.Error("failed to publish reset code message", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPassword проверяет код восстановления и устанавливает новый пароль.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	const op = "auth.ResetPassword"
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.ResetCode == nil || *user.ResetCode != code {
		return fmt.Errorf("%s: %w", op, domain.ErrResetCodeInvalid)
	}
	if user.ResetCodeExpiry == nil || time.Now().UTC().After(*user.ResetCodeExpiry) {
		return fmt.Errorf("%s: %w", op, domain.ErrResetCodeExpired)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePasswordAndClearResetCode(ctx, email, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *Service) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	const op = "auth.ChangePassword"
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, oldPassword); err != nil {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidCredentials)
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePasswordAndClearResetCode(ctx, email, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// generateResetCode возвращает случайный шестизначный код.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
