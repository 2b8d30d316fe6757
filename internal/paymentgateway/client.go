package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fademebets/fademebets-backend/internal/domain"
)

// Client клиент API платежного шлюза.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент шлюза.
func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do выполняет запрос и декодирует ответ в result.
// Не-2xx ответы декодируются в *APIError.
func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

// CreateCustomer создает customer для указанного email.
func (c *Client) CreateCustomer(ctx context.Context, email string) (*Customer, error) {
	const op = "paymentgateway.CreateCustomer"
	req, err := c.newRequest(ctx, http.MethodPost, "/customers", map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var customer Customer
	if err := c.do(req, &customer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &customer, nil
}

// GetCustomer возвращает customer по идентификатору.
func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	const op = "paymentgateway.GetCustomer"
	req, err := c.newRequest(ctx, http.MethodGet, "/customers/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var customer Customer
	if err := c.do(req, &customer); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrCustomerMissing, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &customer, nil
}

// ListActiveSubscriptions возвращает активные подписки customer.
func (c *Client) ListActiveSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	const op = "paymentgateway.ListActiveSubscriptions"
	path := "/subscriptions?customer=" + url.QueryEscape(customerID) + "&status=active"
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var list struct {
		Data []Subscription `json:"data"`
	}
	if err := c.do(req, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list.Data, nil
}

// CancelSubscription отменяет подписку на стороне шлюза.
func (c *Client) CancelSubscription(ctx context.Context, id string) error {
	const op = "paymentgateway.CancelSubscription"
	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions/"+url.PathEscape(id)+"/cancel", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateCheckoutSession создает checkout-сессию для customer и цены плана.
func (c *Client) CreateCheckoutSession(ctx context.Context, reqParams CreateSessionRequest) (*CheckoutSession, error) {
	const op = "paymentgateway.CreateCheckoutSession"
	req, err := c.newRequest(ctx, http.MethodPost, "/checkout/sessions", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var session CheckoutSession
	if err := c.do(req, &session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session, nil
}

// GetCheckoutSession возвращает checkout-сессию по идентификатору.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	const op = "paymentgateway.GetCheckoutSession"
	req, err := c.newRequest(ctx, http.MethodGet, "/checkout/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var session CheckoutSession
	if err := c.do(req, &session); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrSessionNotFound, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session, nil
}
