// Package otp issues and verifies the one-time codes used to confirm a
// contact identifier (email or phone).  Codes and per-identifier
// attempt counters live in an expiring key-value store so concurrent
// verification attempts race on atomic INCR rather than on application
// state.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	codePrefix    = "otp:"
	attemptPrefix = "otp_attempts:"
)

// KV is the minimal expiring key-value surface the OTP store needs.
// Redis satisfies it in production; tests use an in-memory fake.
type KV interface {
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Store binds OTP semantics to a KV backend.
type Store struct {
	kv          KV
	ttl         time.Duration
	maxAttempts int64
}

// NewStore returns a Store with the given code lifetime and attempt cap.
func NewStore(kv KV, ttl time.Duration, maxAttempts int) *Store {
	return &Store{kv: kv, ttl: ttl, maxAttempts: int64(maxAttempts)}
}

// Generate returns a random 6-digit numeric code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Put stores a code for an identifier with the configured TTL and
// resets any prior attempt counter, so a re-sent code always grants a
// fresh set of attempts.
func (s *Store) Put(ctx context.Context, identifier, code string) error {
	if err := s.kv.SetEx(ctx, codePrefix+identifier, code, s.ttl); err != nil {
		return err
	}
	return s.kv.Del(ctx, attemptPrefix+identifier)
}

// Verify checks a submitted code.  Every call counts as an attempt: the
// counter is incremented first and given the code's TTL on its first
// use.  Once attempts exceed the cap the code and counter are deleted
// and verification fails even for a correct code.  A match consumes the
// code (single use); a mismatch leaves it in place for a retry.
func (s *Store) Verify(ctx context.Context, identifier, code string) (bool, error) {
	attemptKey := attemptPrefix + identifier
	attempts, err := s.kv.Incr(ctx, attemptKey)
	if err != nil {
		return false, err
	}
	if attempts == 1 {
		if err := s.kv.Expire(ctx, attemptKey, s.ttl); err != nil {
			return false, err
		}
	}
	if attempts > s.maxAttempts {
		if err := s.kv.Del(ctx, codePrefix+identifier, attemptKey); err != nil {
			return false, err
		}
		return false, nil
	}

	stored, ok, err := s.kv.Get(ctx, codePrefix+identifier)
	if err != nil {
		return false, err
	}
	if !ok || stored != code {
		return false, nil
	}

	if err := s.kv.Del(ctx, codePrefix+identifier, attemptKey); err != nil {
		return false, err
	}
	return true, nil
}
