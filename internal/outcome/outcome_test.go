package outcome

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"matchday-bot/internal/model"
)

const interMilan = `{
	"result": "1",
	"home_goals": 2,
	"away_goals": 1,
	"total_goals": 3,
	"match_statistics": {"corners": 9},
	"players": {"Nicolò Barella": {"cards": 1, "passes": 61}}
}`

func TestDecode(t *testing.T) {
	out, err := Decode([]byte(interMilan))
	require.NoError(t, err)
	assert.Equal(t, "1", out.Result)
	assert.Equal(t, 3, out.Goals())
	assert.Equal(t, 1, out.Players["Nicolò Barella"].Cards)

	tests := map[string]string{
		"bad result":     `{"result": "3", "home_goals": 0, "away_goals": 0}`,
		"negative goals": `{"result": "X", "home_goals": -1, "away_goals": 0}`,
		"missing goals":  `{"result": "X"}`,
		"string stat":    `{"result": "X", "home_goals": 0, "away_goals": 0, "match_statistics": {"corners": "nine"}}`,
		"not json":       `<html>`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestHTTPProvider_Lookup(t *testing.T) {
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotPath = r.URL.EscapedPath()
		switch r.URL.Path {
		case "/matches/Inter Milan":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(interMilan))
		case "/matches/Broken":
			_, _ = w.Write([]byte(`{"result": "7"}`))
		case "/matches/Down":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL+"/", WithAPIKey("secret"), WithRateLimit(100, 10), WithTimeout(2*time.Second))
	ctx := context.Background()

	out, err := p.Lookup(ctx, "Inter Milan")
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "/matches/Inter%20Milan", gotPath)
	assert.Equal(t, 2, out.HomeGoals)

	_, err = p.Lookup(ctx, "Roma-Lazio")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.Lookup(ctx, "Broken")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = p.Lookup(ctx, "Down")
	assert.ErrorContains(t, err, "502")
}

func TestHTTPProvider_CancelledContext(t *testing.T) {
	p := NewHTTPProvider("http://127.0.0.1:1", WithRateLimit(0.001, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Lookup(ctx, "Inter-Milan")
	assert.Error(t, err)
}

func TestStaticProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outcomes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Inter-Milan": `+interMilan+`}`), 0o644))

	p, err := LoadStaticProvider(path)
	require.NoError(t, err)

	out, err := p.Lookup(context.Background(), "Inter-Milan")
	require.NoError(t, err)
	assert.Equal(t, 9.0, out.MatchStatistics["corners"])

	_, err = p.Lookup(context.Background(), "Roma-Lazio")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(path, []byte(`{"Inter-Milan": {"result": "?"}}`), 0o644))
	_, err = LoadStaticProvider(path)
	assert.Error(t, err)
}

type countingProvider struct {
	calls atomic.Int32
	inner Provider
}

func (c *countingProvider) Lookup(ctx context.Context, matchID string) (*model.MatchOutcome, error) {
	c.calls.Add(1)
	return c.inner.Lookup(ctx, matchID)
}

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

func setupRedis(t *testing.T) (*redis.Client, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())

	return client, func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	}
}

func TestCachedProvider(t *testing.T) {
	client, cleanup := setupRedis(t)
	defer cleanup()

	out, err := Decode([]byte(interMilan))
	require.NoError(t, err)
	inner := &countingProvider{inner: NewStaticProvider(map[string]*model.MatchOutcome{"Inter-Milan": out})}
	p := NewCachedProvider(inner, client, time.Minute)
	ctx := context.Background()

	first, err := p.Lookup(ctx, "Inter-Milan")
	require.NoError(t, err)
	second, err := p.Lookup(ctx, "Inter-Milan")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())

	ttl, err := client.TTL(ctx, cacheKey("Inter-Milan")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = p.Lookup(ctx, "Roma-Lazio")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Lookup(ctx, "Roma-Lazio")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(3), inner.calls.Load())
}
