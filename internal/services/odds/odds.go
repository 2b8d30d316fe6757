package odds

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fademebets/fademebets-backend/internal/lib/sl"
)

// Число одновременных запросов к спортивному API.
const maxConcurrentFetches = 5

// Лиги, для которых доступны таблицы результатов.
var leagueSportKeys = map[string]string{
	"nfl": "americanfootball_nfl",
	"nba": "basketball_nba",
	"mlb": "baseball_mlb",
	"nhl": "icehockey_nhl",
}

// Feed описывает операции спортивного API, нужные агрегатору.
type Feed interface {
	ListSports(ctx context.Context) ([]Sport, error)
	GetOdds(ctx context.Context, sportKey string) ([]Game, error)
	GetScores(ctx context.Context, sportKey string) ([]Score, error)
}

// ResponseCache кеш готовых ответов агрегатора.
type ResponseCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service агрегатор коэффициентов и результатов.
type Service struct {
	feed  Feed
	cache ResponseCache
	log   *slog.Logger
	ttl   time.Duration
}

// New создает новый агрегатор поверх внешнего API и кеша.
func New(feed Feed, cache ResponseCache, log *slog.Logger, ttl time.Duration) *Service {
	return &Service{
		feed:  feed,
		cache: cache,
		log:   log,
		ttl:   ttl,
	}
}

// GetOdds собирает коэффициенты по всем активным видам спорта.
// Ошибка по отдельному виду спорта не срывает всю выборку.
func (s *Service) GetOdds(ctx context.Context) ([]Game, error) {
	const op = "odds.GetOdds"
	const cacheKey = "odds:all"

	var cached []Game
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.log.Warn("odds cache read failed", sl.Err(err))
	} else if found {
		return cached, nil
	}

	sports, err := s.feed.ListSports(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		games []Game
	)
	sem := make(chan struct{}, maxConcurrentFetches)
	for _, sport := range sports {
		if !sport.Active || sport.HasOutrights {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(key string) {
			defer wg.Done()
			defer func() { <-sem }()

			sportGames, err := s.feed.GetOdds(ctx, key)
			if err != nil {
				s.log.Warn("failed to fetch odds for sport",
					slog.String("sport", key), sl.Err(err))
				return
			}
			mu.Lock()
			games = append(games, sportGames...)
			mu.Unlock()
		}(sport.Key)
	}
	wg.Wait()

	if err := s.cache.Set(ctx, cacheKey, games, s.ttl); err != nil {
		s.log.Warn("odds cache write failed", sl.Err(err))
	}
	return games, nil
}

// GetStandings возвращает результаты матчей лиги.
func (s *Service) GetStandings(ctx context.Context, league string) ([]Score, error) {
	const op = "odds.GetStandings"

	sportKey, ok := leagueSportKeys[league]
	if !ok {
		return nil, fmt.Errorf("%s: unknown league %q", op, league)
	}

	cacheKey := "standings:" + league
	var cached []Score
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.log.Warn("standings cache read failed", sl.Err(err))
	} else if found {
		return cached, nil
	}

	scores, err := s.feed.GetScores(ctx, sportKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, cacheKey, scores, s.ttl); err != nil {
		s.log.Warn("standings cache write failed", sl.Err(err))
	}
	return scores, nil
}
