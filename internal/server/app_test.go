package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.DataDir = "/data"
	c.CheckInterval = time.Second
	return c
}

func TestNewApp_PreparesDataDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := newApp(testConfig(), fs, logging.NewNop())
	require.NoError(t, err)

	for _, dir := range []string{"/data/users", "/data/tokens", "/data/checks"} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
}

func TestNewApp_StorageFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := newApp(testConfig(), fs, logging.NewNop())
	require.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := newApp(testConfig(), afero.NewMemMapFs(), logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestRun_ComponentFailureStopsApp(t *testing.T) {
	c := testConfig()
	c.CheckInterval = time.Millisecond

	app, err := newApp(c, afero.NewMemMapFs(), logging.NewNop())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner failure should stop the app")
	}
}
