package geocache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "rto:boundary:karnataka:Ballari")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "rto:boundary:karnataka:Ballari", []byte(`{"value":1}`), time.Hour))
	require.NoError(t, s.Set(ctx, "rto:boundary:karnataka:Bengaluru Urban", []byte(`{"value":2}`), time.Hour))
	require.NoError(t, s.Set(ctx, "rto:coord:karnataka:KA-01", []byte(`{"value":3}`), time.Hour))

	b, ok, err := s.Get(ctx, "rto:boundary:karnataka:Ballari")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"value":1}`, string(b))

	require.NoError(t, s.Del(ctx, "rto:boundary:karnataka:Ballari"))
	require.NoError(t, s.Del(ctx, "rto:boundary:karnataka:Ballari"))
	_, ok, _ = s.Get(ctx, "rto:boundary:karnataka:Ballari")
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx, "rto:boundary:"))
	_, ok, _ = s.Get(ctx, "rto:boundary:karnataka:Bengaluru Urban")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "rto:coord:karnataka:KA-01")
	assert.True(t, ok)
}

func TestDirStore(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	storeContract(t, s)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	s := NewRedisStore(rc)
	storeContract(t, s)

	require.NoError(t, s.Set(context.Background(), "rto:coord:x", []byte("1"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("rto:coord:x"))
}

func TestRedisStoreBackedCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	clk := newClock()

	files := karnatakaFiles()
	c := New(Coordinates, files.load, Options{Store: NewRedisStore(rc), Now: clk.Now})
	_, ok := c.Fetch(ctx, "Karnataka", "Kodagu")
	require.True(t, ok)
	assert.True(t, mr.Exists("rto:coord:karnataka:Kodagu"))

	fresh := New(Coordinates, files.load, Options{Store: NewRedisStore(rc), Now: clk.Now})
	v, ok := fresh.GetCached(ctx, "Karnataka", "Kodagu")
	require.True(t, ok)
	assert.Equal(t, point{Lat: 12.42, Lon: 75.74}, v)

	fresh.Clear(ctx)
	assert.False(t, mr.Exists("rto:coord:karnataka:Kodagu"))
}

func TestRedisStoreDownIsAnError(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rc.Close()
	mr.Close()
	_, _, err := NewRedisStore(rc).Get(context.Background(), "k")
	assert.Error(t, err)
}
