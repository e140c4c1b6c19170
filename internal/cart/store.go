package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotPurchasable  = errors.New("product cannot be purchased in this quantity")
)

const defaultCartTTL = 7 * 24 * time.Hour

// Store keeps carts in Redis, one hash per session keyed by product id with
// integer quantities. Every write refreshes the TTL; abandoned carts expire
// on their own.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func cartKey(session string) string {
	return fmt.Sprintf("cart:%s", session)
}

// Add increments the quantity for a product and returns the new quantity.
func (s *Store) Add(ctx context.Context, session, productID string, qty int) (int, error) {
	if session == "" || productID == "" || qty <= 0 {
		return 0, ErrInvalidArgument
	}
	key := cartKey(session)
	n, err := s.rdb.HIncrBy(ctx, key, productID, int64(qty)).Result()
	if err != nil {
		return 0, err
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return 0, err
	}
	return int(n), nil
}

// SetQuantity replaces the quantity for a product; zero removes the line.
func (s *Store) SetQuantity(ctx context.Context, session, productID string, qty int) error {
	if session == "" || productID == "" || qty < 0 {
		return ErrInvalidArgument
	}
	key := cartKey(session)
	if qty == 0 {
		return s.rdb.HDel(ctx, key, productID).Err()
	}
	if err := s.rdb.HSet(ctx, key, productID, qty).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}

// Remove drops a product line from the cart.
func (s *Store) Remove(ctx context.Context, session, productID string) error {
	if session == "" || productID == "" {
		return ErrInvalidArgument
	}
	return s.rdb.HDel(ctx, cartKey(session), productID).Err()
}

// Clear deletes the whole cart.
func (s *Store) Clear(ctx context.Context, session string) error {
	if session == "" {
		return ErrInvalidArgument
	}
	return s.rdb.Del(ctx, cartKey(session)).Err()
}

// Quantities returns product id -> quantity for the session's cart.
func (s *Store) Quantities(ctx context.Context, session string) (map[string]int, error) {
	if session == "" {
		return nil, ErrInvalidArgument
	}
	raw, err := s.rdb.HGetAll(ctx, cartKey(session)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for id, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			continue
		}
		out[id] = n
	}
	return out, nil
}
