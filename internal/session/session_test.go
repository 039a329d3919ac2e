package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore(time.Hour) },
		"redis": func(t *testing.T) Store {
			s, _ := newRedisStore(t, time.Hour)
			return s
		},
	}

	for name, newStore := range stores {
		t.Run(name+"/Get_MissingReturnsNil", func(t *testing.T) {
			s := newStore(t)
			got, err := s.Get(ctx, "nope")
			require.NoError(t, err)
			require.Nil(t, got)
		})

		t.Run(name+"/SetThenGet", func(t *testing.T) {
			s := newStore(t)
			data := New()
			data.IsAdmin = true
			require.NoError(t, s.Set(ctx, data))

			got, err := s.Get(ctx, data.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, data.ID, got.ID)
			require.True(t, got.IsAdmin)
		})

		t.Run(name+"/DestroyRemovesEverything", func(t *testing.T) {
			s := newStore(t)
			data := New()
			data.IsAdmin = true
			require.NoError(t, s.Set(ctx, data))
			require.NoError(t, s.Destroy(ctx, data.ID))

			got, err := s.Get(ctx, data.ID)
			require.NoError(t, err)
			require.Nil(t, got)
		})

		t.Run(name+"/DestroyMissingIsNotAnError", func(t *testing.T) {
			s := newStore(t)
			require.NoError(t, s.Destroy(ctx, "never-existed"))
		})
	}
}

// Both drivers expire a session a fixed TTL after Set; reading it in between does not extend it.
func TestStores_ExpiryIsNotExtendedByGet(t *testing.T) {
	ctx := context.Background()

	drivers := map[string]func(t *testing.T) (Store, func(time.Duration)){
		"memory": func(t *testing.T) (Store, func(time.Duration)) {
			s := NewMemoryStore(time.Minute)
			now := time.Now()
			s.now = func() time.Time { return now }
			return s, func(d time.Duration) { now = now.Add(d) }
		},
		"redis": func(t *testing.T) (Store, func(time.Duration)) {
			s, mr := newRedisStore(t, time.Minute)
			return s, mr.FastForward
		},
	}

	for name, newDriver := range drivers {
		t.Run(name, func(t *testing.T) {
			s, advance := newDriver(t)
			data := New()
			require.NoError(t, s.Set(ctx, data))

			advance(59 * time.Second)
			got, err := s.Get(ctx, data.ID)
			require.NoError(t, err)
			require.NotNil(t, got)

			advance(2 * time.Second)
			got, err = s.Get(ctx, data.ID)
			require.NoError(t, err)
			require.Nil(t, got)
		})
	}
}

func TestMemoryStore_ExpiredGetKeepsConcurrentSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	start := time.Now()
	s.now = func() time.Time { return start }

	data := New()
	require.NoError(t, s.Set(ctx, data))

	late := start.Add(2 * time.Minute)
	fresh := *data
	fresh.IsAdmin = true
	// The first clock read is Get's expiry check; a login for the same id lands right after it.
	s.now = func() time.Time {
		s.now = func() time.Time { return late }
		require.NoError(t, s.Set(ctx, &fresh))
		return late
	}

	got, err := s.Get(ctx, data.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = s.Get(ctx, data.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.IsAdmin)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	data := New()
	require.NoError(t, s.Set(ctx, data))

	got, err := s.Get(ctx, data.ID)
	require.NoError(t, err)
	got.IsAdmin = true

	again, err := s.Get(ctx, data.ID)
	require.NoError(t, err)
	require.False(t, again.IsAdmin)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(StoreTypeMemory, WithTTL(time.Minute))
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	_, err = NewStore(StoreTypeRedis)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewStore("etcd")
	require.ErrorIs(t, err, ErrInvalidStoreType)
}

func TestCookieCodec(t *testing.T) {
	codec := NewCookieCodec("secret", time.Hour)

	value, err := codec.Encode("abc-123")
	require.NoError(t, err)

	id, ok := codec.Decode(value)
	require.True(t, ok)
	require.Equal(t, "abc-123", id)

	t.Run("OtherSecretRejected", func(t *testing.T) {
		_, ok := NewCookieCodec("other", time.Hour).Decode(value)
		require.False(t, ok)
	})

	t.Run("TamperedRejected", func(t *testing.T) {
		flipped := []byte(value)
		if flipped[len(flipped)/2] == 'A' {
			flipped[len(flipped)/2] = 'B'
		} else {
			flipped[len(flipped)/2] = 'A'
		}
		for _, bad := range []string{"", "abc", "abc-123", "abc-123.sig", string(flipped)} {
			_, ok := codec.Decode(bad)
			require.False(t, ok, bad)
		}
	})

	t.Run("EmptySecretCannotEncode", func(t *testing.T) {
		_, err := NewCookieCodec("", time.Hour).Encode("abc-123")
		require.Error(t, err)
	})

	t.Run("OlderThanTTLRejected", func(t *testing.T) {
		short := NewCookieCodec("secret", time.Second)
		value, err := short.Encode("abc-123")
		require.NoError(t, err)
		_, ok := short.Decode(value)
		require.True(t, ok)

		time.Sleep(2100 * time.Millisecond)
		_, ok = short.Decode(value)
		require.False(t, ok)
	})
}
