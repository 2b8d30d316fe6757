// Package odds агрегирует коэффициенты и результаты матчей
// из внешнего спортивного API с кешированием ответов.
package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Sport описание вида спорта во внешнем API.
type Sport struct {
	Key          string `json:"key"`
	Title        string `json:"title"`
	Group        string `json:"group"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Game матч с коэффициентами букмекеров.
type Game struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	SportTitle   string          `json:"sport_title"`
	CommenceTime time.Time       `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   json.RawMessage `json:"bookmakers"`
}

// Score результат матча для таблицы лиги.
type Score struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	CommenceTime time.Time       `json:"commence_time"`
	Completed    bool            `json:"completed"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Scores       json.RawMessage `json:"scores"`
}

// Client клиент внешнего спортивного API.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает новый клиент спортивного API.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	query.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("odds api request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("odds api returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode odds api response: %w", err)
	}
	return nil
}

// ListSports возвращает активные виды спорта.
func (c *Client) ListSports(ctx context.Context) ([]Sport, error) {
	const op = "odds.ListSports"
	var sports []Sport
	if err := c.get(ctx, "/sports", url.Values{}, &sports); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sports, nil
}

// GetOdds возвращает матчи с коэффициентами h2h для вида спорта.
func (c *Client) GetOdds(ctx context.Context, sportKey string) ([]Game, error) {
	const op = "odds.GetOdds"
	query := url.Values{}
	query.Set("regions", "us")
	query.Set("markets", "h2h")
	var games []Game
	if err := c.get(ctx, "/sports/"+url.PathEscape(sportKey)+"/odds", query, &games); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return games, nil
}

// GetScores возвращает результаты матчей вида спорта за последние дни.
func (c *Client) GetScores(ctx context.Context, sportKey string) ([]Score, error) {
	const op = "odds.GetScores"
	query := url.Values{}
	query.Set("daysFrom", "3")
	var scores []Score
	if err := c.get(ctx, "/sports/"+url.PathEscape(sportKey)+"/scores", query, &scores); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return scores, nil
}
