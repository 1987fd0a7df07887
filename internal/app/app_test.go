package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Application: config.ApplicationConfig{Host: "127.0.0.1", Port: 0},
		Database: config.DatabaseConfig{
			Host: "127.0.0.1", Port: 1, Username: "app", DatabaseName: "newsletter",
			MaxOpenConns: 2, ConnectTimeoutSeconds: 1, QueryTimeoutSeconds: 2,
		},
		EmailClient: config.EmailClientConfig{
			Provider:            "http",
			BaseURL:             "http://127.0.0.1:1",
			SenderEmail:         "news@example.com",
			TimeoutMilliseconds: 100,
			MaxRetries:          1,
		},
	}
}

func startApp(t *testing.T, cfg *config.Config) (*Application, string) {
	t.Helper()
	a, err := Build(context.Background(), cfg, logger.New("test", logger.DEBUG, true, io.Discard))
	require.NoError(t, err)
	require.NotZero(t, a.Port())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})
	return a, fmt.Sprintf("http://127.0.0.1:%d", a.Port())
}

func TestApplication_ServesWhileDatabaseIsDown(t *testing.T) {
	a, base := startApp(t, testConfig())
	assert.NotNil(t, a.EmailClient())

	resp, err := http.Get(base + "/health_check")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	form := url.Values{"name": {"le guin"}, "email": {"ursula_le_guin@gmail.com"}}
	resp, err = http.Post(base+"/subscriptions", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, body)

	resp, err = http.Post(base+"/subscriptions", "application/x-www-form-urlencoded", strings.NewReader("name=le%20guin"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestApplication_ThrottleWithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := testConfig()
	cfg.Redis.URL = "redis://" + mr.Addr()
	cfg.Throttle = config.ThrottleConfig{Enabled: true, Limit: 1, WindowSeconds: 60}
	_, base := startApp(t, cfg)

	post := func() int {
		resp, err := http.Post(base+"/subscriptions", "application/x-www-form-urlencoded", strings.NewReader("name="))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusBadRequest, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}

func TestBuild_RejectsInvalidSender(t *testing.T) {
	cfg := testConfig()
	cfg.EmailClient.SenderEmail = "not-an-email"

	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestBuild_RejectsInvalidTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.Application.TrustedProxies = []string{"load-balancer"}

	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestBuild_RejectsInvalidRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.URL = "mysql://nope"

	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}
