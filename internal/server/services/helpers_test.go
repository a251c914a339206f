package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/storage/storagetest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	testPhone    = "5551234567"
	otherPhone   = "5559876543"
	testPassword = "hunter2"
)

type fixture struct {
	fs     *storagetest.FaultFs
	rm     *repomanager.FileRepositoryManager
	creds  *CredentialService
	users  *UserService
	checks *CheckService
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ffs := storagetest.NewFaultFs(afero.NewMemMapFs())
	rm, err := repomanager.NewFileRepositoryManager(ffs, "/data")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HashingSecret = "test-secret"

	f := &fixture{fs: ffs, rm: rm, now: time.UnixMilli(1_700_000_000_000)}
	log := logging.NewNop()

	f.creds = NewCredentialService(rm, cfg, log)
	f.creds.now = func() time.Time { return f.now }
	f.users = NewUserService(rm, f.creds, log)
	f.checks = NewCheckService(rm, f.creds, cfg, log)
	return f
}

func (f *fixture) signup(t *testing.T, phone string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), Input{Body: map[string]any{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"phone":        phone,
		"password":     testPassword,
		"tosAgreement": true,
	}})
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, phone string) *models.Token {
	t.Helper()
	tok, err := f.creds.IssueToken(context.Background(), phone, testPassword)
	require.NoError(t, err)
	return tok
}

func (f *fixture) addCheck(t *testing.T, token string) *models.Check {
	t.Helper()
	c, err := f.checks.Create(context.Background(), Input{
		Headers: authHeader(token),
		Body:    checkBody(),
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) storedUser(t *testing.T, phone string) *models.User {
	t.Helper()
	u, err := f.rm.Users().Get(context.Background(), phone)
	require.NoError(t, err)
	return u
}

func authHeader(token string) map[string]string {
	return map[string]string{common.TokenHeaderName: token}
}

func checkBody() map[string]any {
	return map[string]any{
		"protocol":       "https",
		"url":            "example.com/health",
		"method":         "get",
		"successCodes":   []any{float64(200), float64(201)},
		"timeoutSeconds": float64(3),
	}
}
