package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "blog:token:"

// RedisTokenStore keeps tokens in Redis with a TTL matching their expiry.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore connects to redisURL, which may be a redis:// URL or a
// bare host:port, and pings it.
func NewRedisTokenStore(redisURL string) (*RedisTokenStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		u, parseErr := url.Parse("redis://" + redisURL)
		if parseErr != nil {
			return nil, err
		}
		opt = &redis.Options{Addr: u.Host}
		if u.Path != "" && u.Path != "/" {
			if db, dbErr := strconv.Atoi(u.Path[1:]); dbErr == nil {
				opt.DB = db
			}
		}
		if u.User != nil {
			if password, ok := u.User.Password(); ok {
				opt.Password = password
			}
		}
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisTokenStore{client: client}, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, token *entities.AuthToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	return s.client.Set(ctx, redisKeyPrefix+token.Token, data, ttl).Err()
}

func (s *RedisTokenStore) Lookup(ctx context.Context, token string) (*entities.AuthToken, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	var t entities.AuthToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	return &t, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisKeyPrefix+token).Err()
}

func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
