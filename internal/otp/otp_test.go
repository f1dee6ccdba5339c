package otp_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/otp"
)

// fakeKV is an in-memory KV backend.  TTLs are recorded but never
// enforced; expiry behavior is exercised through explicit deletes.
type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	f.values[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeKV) Incr(_ context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(f.values[key], 10, 64)
	n++
	f.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (f *fakeKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
		delete(f.ttls, k)
	}
	return nil
}

func TestGenerateSixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := otp.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			require.True(t, ch >= '0' && ch <= '9')
		}
	}
}

func TestVerifyMatchConsumesCode(t *testing.T) {
	kv := newFakeKV()
	s := otp.NewStore(kv, 5*time.Minute, 3)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "user@example.com", "123456"))

	ok, err := s.Verify(ctx, "user@example.com", "123456")
	require.NoError(t, err)
	require.True(t, ok)

	// Single use: the same code cannot verify twice.
	ok, err = s.Verify(ctx, "user@example.com", "123456")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyMismatchKeepsCode(t *testing.T) {
	kv := newFakeKV()
	s := otp.NewStore(kv, 5*time.Minute, 3)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "user@example.com", "123456"))

	ok, err := s.Verify(ctx, "user@example.com", "000000")
	require.NoError(t, err)
	require.False(t, ok)

	// A retry with the right code inside the attempt budget succeeds.
	ok, err = s.Verify(ctx, "user@example.com", "123456")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyAttemptCap(t *testing.T) {
	kv := newFakeKV()
	s := otp.NewStore(kv, 5*time.Minute, 3)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "+994501234567", "123456"))

	for i := 0; i < 3; i++ {
		ok, err := s.Verify(ctx, "+994501234567", "999999")
		require.NoError(t, err)
		require.False(t, ok)
	}

	// The fourth attempt fails even with the correct code, and the
	// code itself is gone.
	ok, err := s.Verify(ctx, "+994501234567", "123456")
	require.NoError(t, err)
	require.False(t, ok)

	_, found, err := kv.Get(ctx, "otp:+994501234567")
	require.NoError(t, err)
	require.False(t, found)
}

func TestPutResetsAttemptCounter(t *testing.T) {
	kv := newFakeKV()
	s := otp.NewStore(kv, 5*time.Minute, 3)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "user@example.com", "111111"))
	for i := 0; i < 3; i++ {
		ok, err := s.Verify(ctx, "user@example.com", "222222")
		require.NoError(t, err)
		require.False(t, ok)
	}

	// Re-issuing a code grants a fresh attempt budget.
	require.NoError(t, s.Put(ctx, "user@example.com", "333333"))
	ok, err := s.Verify(ctx, "user@example.com", "333333")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestResetStoreConsume(t *testing.T) {
	kv := newFakeKV()
	s := otp.NewResetStore(kv, time.Hour)
	ctx := context.Background()

	token, err := s.Issue(ctx, 42)
	require.NoError(t, err)
	require.Len(t, token, 64)

	userID, ok, err := s.Consume(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), userID)

	// Consumed tokens are gone.
	_, ok, err = s.Consume(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResetStoreUnknownToken(t *testing.T) {
	kv := newFakeKV()
	s := otp.NewResetStore(kv, time.Hour)

	_, ok, err := s.Consume(context.Background(), "deadbeef")
	require.NoError(t, err)
	require.False(t, ok)
}
