// Package otp delivers one-time passwords over the SMS gateway and keeps
// them in Redis with a TTL so they can be verified and consumed exactly
// once.
package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/sms"
)

// Store abstracts the TTL cache so the service can be tested without a
// running Redis.
type Store interface {
	Set(ctx context.Context, mobile, code string, ttl time.Duration) error
	Get(ctx context.Context, mobile string) (string, error)
	Delete(ctx context.Context, mobile string) error
}

const keyPrefix = "otp:"

// RedisStore keeps codes under otp:<mobile> with the configured TTL.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) Set(ctx context.Context, mobile, code string, ttl time.Duration) error {
	if err := s.Client.Set(ctx, keyPrefix+mobile, code, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Get returns the stored code, or "" when none exists or it expired.
func (s *RedisStore) Get(ctx context.Context, mobile string) (string, error) {
	code, err := s.Client.Get(ctx, keyPrefix+mobile).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read otp: %w", err)
	}
	return code, nil
}

func (s *RedisStore) Delete(ctx context.Context, mobile string) error {
	if err := s.Client.Del(ctx, keyPrefix+mobile).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

// Service coordinates storage and delivery. Unlike the other SMS call sites,
// OTP delivery failure IS surfaced to the caller: an OTP that never arrives
// is an actionable error for the client.
type Service struct {
	Store  Store
	Sender sms.Notifier
	TTL    time.Duration
	Logger *logger.Logger
}

func NewService(store Store, sender sms.Notifier, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{Store: store, Sender: sender, TTL: ttl, Logger: log}
}

// Send stores the code and dispatches it to the mobile number.
func (s *Service) Send(ctx context.Context, mobile, code string) error {
	if mobile == "" || code == "" {
		return apperr.E(apperr.ErrValidation, "Mobile number and OTP are required")
	}

	if err := s.Store.Set(ctx, mobile, code, s.TTL); err != nil {
		s.Logger.Error("OTP", fmt.Sprintf("Failed to store code for %s: %v", mobile, err))
		return err
	}

	if !s.Sender.Send(mobile, fmt.Sprintf("Your OTP code is: %s", code)) {
		return fmt.Errorf("otp dispatch to %s failed", mobile)
	}
	return nil
}

// Verify compares the submitted code against the stored one and consumes it
// on success. An expired or never-sent code verifies false, not as an error.
func (s *Service) Verify(ctx context.Context, mobile, code string) (bool, error) {
	if mobile == "" || code == "" {
		return false, apperr.E(apperr.ErrValidation, "Mobile number and OTP are required")
	}

	stored, err := s.Store.Get(ctx, mobile)
	if err != nil {
		return false, err
	}
	if stored == "" || stored != code {
		return false, nil
	}

	if err := s.Store.Delete(ctx, mobile); err != nil {
		s.Logger.Warn("OTP", fmt.Sprintf("Failed to consume code for %s: %v", mobile, err))
	}
	return true, nil
}
