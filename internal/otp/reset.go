package otp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

const resetPrefix = "reset:"

// ResetStore keeps short-lived password reset tokens in the same
// expiring KV backend as the OTP codes.  A token maps back to the user
// it was issued for and is consumed on use.
type ResetStore struct {
	kv  KV
	ttl time.Duration
}

func NewResetStore(kv KV, ttl time.Duration) *ResetStore {
	return &ResetStore{kv: kv, ttl: ttl}
}

// Issue creates a random reset token for the user and stores it with
// the configured TTL.
func (s *ResetStore) Issue(ctx context.Context, userID uint64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	if err := s.kv.SetEx(ctx, resetPrefix+token, strconv.FormatUint(userID, 10), s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Consume resolves a reset token to its user and deletes it.  The
// second return value is false when the token is unknown or expired.
func (s *ResetStore) Consume(ctx context.Context, token string) (uint64, bool, error) {
	v, ok, err := s.kv.Get(ctx, resetPrefix+token)
	if err != nil || !ok {
		return 0, false, err
	}
	userID, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	if err := s.kv.Del(ctx, resetPrefix+token); err != nil {
		return 0, false, err
	}
	return userID, true, nil
}
