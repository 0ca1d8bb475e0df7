package mail

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeTTL is how long a verification code stays valid.
const CodeTTL = 10 * time.Minute

// CodeStore issues and checks one-time email verification codes.
type CodeStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Check(ctx context.Context, email, code string) (bool, error)
}

// ConnectRedis creates a client and verifies the connection with a ping.
func ConnectRedis(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type RedisCodes struct {
	Client *redis.Client
	TTL    time.Duration
}

func codeKey(email string) string {
	return "dymm:verify:" + strings.ToLower(strings.TrimSpace(email))
}

// Issue stores a fresh six-digit code for email, replacing any earlier one.
func (c *RedisCodes) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	ttl := c.TTL
	if ttl <= 0 {
		ttl = CodeTTL
	}
	if err := c.Client.Set(ctx, codeKey(email), code, ttl).Err(); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Check compares code with the one issued for email. A matching code is
// consumed.
func (c *RedisCodes) Check(ctx context.Context, email, code string) (bool, error) {
	want, err := c.Client.Get(ctx, codeKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(code)) != 1 {
		return false, nil
	}
	if err := c.Client.Del(ctx, codeKey(email)).Err(); err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	return true, nil
}
