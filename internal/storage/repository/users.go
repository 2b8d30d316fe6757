package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fademebets/fademebets-backend/internal/domain"
	"github.com/fademebets/fademebets-backend/internal/models"
)

const userColumns = `uid, email, password_hash, role, gateway_customer_id,
			      subscription_status, subscription_end_date, last_session_id,
			      reset_code, reset_code_expiry`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var passwordHash, customerID, sessionID, resetCode sql.NullString
	var endDate, resetExpiry sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &passwordHash, &u.Role, &customerID,
		&u.SubscriptionStatus, &endDate, &sessionID, &resetCode, &resetExpiry); err != nil {
		return nil, err
	}
	if passwordHash.Valid {
		u.PasswordHash = passwordHash.String
	}
	if customerID.Valid {
		u.GatewayCustomerID = &customerID.String
	}
	if endDate.Valid {
		u.SubscriptionEndDate = &endDate.Time
	}
	if sessionID.Valid {
		u.LastSessionID = &sessionID.String
	}
	if resetCode.Valid {
		u.ResetCode = &resetCode.String
	}
	if resetExpiry.Valid {
		u.ResetCodeExpiry = &resetExpiry.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, password_hash, role, subscription_status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Role, user.SubscriptionStatus).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByGatewayCustomerID возвращает пользователя по идентификатору
// клиента в платежном шлюзе.
func (s *Storage) GetUserByGatewayCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByGatewayCustomerID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE gateway_customer_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, customerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SetGatewayCustomerID сохраняет идентификатор клиента платежного шлюза,
// перезаписывая устаревшее значение.
func (s *Storage) SetGatewayCustomerID(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetGatewayCustomerID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET gateway_customer_id = $1
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, customerID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	return nil
}

// UpdateSubscriptionState обновляет статус и дату окончания подписки
// по идентификатору клиента шлюза. Возвращает число затронутых строк:
// ноль означает, что клиент неизвестен хранилищу.
func (s *Storage) UpdateSubscriptionState(ctx context.Context, customerID, status string, endDate *time.Time) (int64, error) {
	const op = "storage.UpdateSubscriptionState"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1,
			      subscription_end_date = COALESCE($2, subscription_end_date)
			  WHERE gateway_customer_id = $3`
	res, err := s.DB.ExecContext(ctx, query, status, endDate, customerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// MarkSubscriptionInactive переводит подписку в неактивное состояние,
// не трогая дату окончания. Возвращает число затронутых строк.
func (s *Storage) MarkSubscriptionInactive(ctx context.Context, customerID string) (int64, error) {
	const op = "storage.MarkSubscriptionInactive"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1
			  WHERE gateway_customer_id = $2`
	res, err := s.DB.ExecContext(ctx, query, models.SubscriptionInactive, customerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ConfirmSubscription активирует подписку пользователя после подтверждения
// оплаты и фиксирует идентификатор обработанной сессии.
func (s *Storage) ConfirmSubscription(ctx context.Context, userUID string, endDate time.Time, sessionID string) error {
	const op = "storage.ConfirmSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1,
			      subscription_end_date = $2,
			      last_session_id = $3
			  WHERE uid = $4`
	res, err := s.DB.ExecContext(ctx, query, models.SubscriptionActive, endDate, sessionID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	return nil
}

// UpdateSubscriptionStatusByUID обновляет статус подписки пользователя.
func (s *Storage) UpdateSubscriptionStatusByUID(ctx context.Context, userUID, status string) error {
	const op = "storage.UpdateSubscriptionStatusByUID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, status, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	return nil
}

// SetResetCode сохраняет код восстановления пароля и срок его действия.
func (s *Storage) SetResetCode(ctx context.Context, email, code string, expiry time.Time) error {
	const op = "storage.SetResetCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET reset_code = $1,
			      reset_code_expiry = $2
			  WHERE email = $3`
	res, err := s.DB.ExecContext(ctx, query, code, expiry, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	return nil
}

// UpdatePasswordAndClearResetCode обновляет хеш пароля и сбрасывает код восстановления.
func (s *Storage) UpdatePasswordAndClearResetCode(ctx context.Context, email, passwordHash string) error {
	const op = "storage.UpdatePasswordAndClearResetCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1,
			      reset_code = NULL,
			      reset_code_expiry = NULL
			  WHERE email = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	return nil
}

// FindSubscriptionsExpiringTomorrow находит активные подписки,
// срок действия которых заканчивается завтра.
func (s *Storage) FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]models.ExpiryInfo, error) {
	const op = "storage.FindSubscriptionsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT email, subscription_end_date
			  FROM users
			  WHERE subscription_status = $1
			    AND subscription_end_date::DATE = CURRENT_DATE + INTERVAL '1 day';`
	rows, err := s.DB.QueryContext(ctx, query, models.SubscriptionActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []models.ExpiryInfo
	for rows.Next() {
		var info models.ExpiryInfo
		if err = rows.Scan(&info.Email, &info.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
