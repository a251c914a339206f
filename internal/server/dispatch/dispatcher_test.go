package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/services"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/storage/storagetest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone = "5551234567"

type env struct {
	d   *Dispatcher
	fs  *storagetest.FaultFs
	log *bytes.Buffer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ffs := storagetest.NewFaultFs(afero.NewMemMapFs())
	rm, err := repomanager.NewFileRepositoryManager(ffs, "/data")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	creds := services.NewCredentialService(rm, cfg, log)
	d := NewDispatcher(creds,
		services.NewUserService(rm, creds, log),
		services.NewCheckService(rm, creds, cfg, log),
		log,
	)
	return &env{d: d, fs: ffs, log: &buf}
}

func (e *env) do(method, resource string, query, headers map[string]string, body map[string]any) Response {
	return e.d.Dispatch(context.Background(), Request{
		Method:   method,
		Resource: resource,
		Query:    query,
		Headers:  headers,
		Body:     body,
	})
}

func (e *env) signupAndLogin(t *testing.T) string {
	t.Helper()
	resp := e.do(http.MethodPost, "users", nil, nil, map[string]any{
		"firstName": "Ada", "lastName": "Lovelace", "phone": phone, "password": "pw", "tosAgreement": true,
	})
	require.Equal(t, http.StatusOK, resp.Status, "%v", resp.Payload)

	resp = e.do(http.MethodPost, "tokens", nil, nil, map[string]any{"phone": phone, "password": "pw"})
	require.Equal(t, http.StatusOK, resp.Status, "%v", resp.Payload)
	return resp.Payload.(*models.Token).ID
}

func errorText(t *testing.T, resp Response) string {
	t.Helper()
	m, ok := resp.Payload.(map[string]any)
	require.True(t, ok, "payload %T", resp.Payload)
	s, _ := m["Error"].(string)
	return s
}

func TestDispatch_Ping(t *testing.T) {
	e := newEnv(t)

	resp := e.do(http.MethodGet, "ping", nil, nil, nil)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Nil(t, resp.Payload)

	resp = e.do(http.MethodPost, "ping", nil, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
}

func TestDispatch_UnknownResourceAndMethod(t *testing.T) {
	e := newEnv(t)

	resp := e.do(http.MethodGet, "nope", nil, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "Not found", errorText(t, resp))

	for _, m := range []string{http.MethodPatch, http.MethodHead, "BREW"} {
		resp = e.do(m, "users", nil, nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Status, m)
	}
}

func TestDispatch_UserFlow(t *testing.T) {
	e := newEnv(t)
	token := e.signupAndLogin(t)

	resp := e.do(http.MethodGet, "users", map[string]string{"phone": phone}, map[string]string{"token": token}, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	u := resp.Payload.(*models.User)
	assert.Empty(t, u.HashedPassword)

	resp = e.do(http.MethodGet, "users", map[string]string{"phone": phone}, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Missing required token in header, or token is invalid.", errorText(t, resp))

	resp = e.do(http.MethodPost, "users", nil, nil, map[string]any{
		"firstName": "Ada", "lastName": "Lovelace", "phone": phone, "password": "pw", "tosAgreement": true,
	})
	assert.Equal(t, http.StatusConflict, resp.Status)

	resp = e.do(http.MethodPost, "users", nil, nil, map[string]any{"phone": phone})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Missing required fields: firstName, lastName, password, tosAgreement", errorText(t, resp))

	resp = e.do(http.MethodPost, "tokens", nil, nil, map[string]any{"phone": phone, "password": "bad"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = e.do(http.MethodDelete, "tokens", map[string]string{"id": token}, nil, nil)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Nil(t, resp.Payload)

	resp = e.do(http.MethodGet, "tokens", map[string]string{"id": token}, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestDispatch_CheckQuota(t *testing.T) {
	e := newEnv(t)
	token := e.signupAndLogin(t)
	headers := map[string]string{"token": token}

	body := map[string]any{
		"protocol": "http", "url": "localhost", "method": "get",
		"successCodes": []any{float64(200)}, "timeoutSeconds": float64(1),
	}
	for i := 0; i < 5; i++ {
		resp := e.do(http.MethodPost, "checks", nil, headers, body)
		require.Equal(t, http.StatusOK, resp.Status, "%v", resp.Payload)
	}

	resp := e.do(http.MethodPost, "checks", nil, headers, body)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "The user already has the maximum number of checks (5).", errorText(t, resp))
}

func TestDispatch_PartialCascadeReportsFailedChecks(t *testing.T) {
	e := newEnv(t)
	token := e.signupAndLogin(t)
	headers := map[string]string{"token": token}

	body := map[string]any{
		"protocol": "https", "url": "example.com", "method": "get",
		"successCodes": []any{float64(200)}, "timeoutSeconds": float64(2),
	}
	resp := e.do(http.MethodPost, "checks", nil, headers, body)
	require.Equal(t, http.StatusOK, resp.Status)
	resp = e.do(http.MethodPost, "checks", nil, headers, body)
	require.Equal(t, http.StatusOK, resp.Status)
	c2 := resp.Payload.(*models.Check)

	e.fs.FailRemove(c2.ID+".json", errors.New("device busy"))

	resp = e.do(http.MethodDelete, "users", map[string]string{"phone": phone}, headers, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	payload := resp.Payload.(map[string]any)
	assert.Equal(t, msgPartialCascade, payload["Error"])
	assert.Equal(t, []string{c2.ID}, payload["failedChecks"])
	assert.Contains(t, e.log.String(), TextCodePartialCascade)
}

func TestDispatch_InternalErrorsHideDetail(t *testing.T) {
	e := newEnv(t)
	e.d.table["boom"] = map[string]Operation{
		http.MethodGet: func(context.Context, services.Input) (any, error) {
			return nil, fmt.Errorf("%w: open /srv/data/users/x.json: permission denied", common.ErrorStorage)
		},
		http.MethodPost: func(context.Context, services.Input) (any, error) {
			return nil, errors.New("something odd")
		},
	}

	for _, m := range []string{http.MethodGet, http.MethodPost} {
		resp := e.do(m, "boom", nil, nil, nil)
		assert.Equal(t, http.StatusInternalServerError, resp.Status)
		assert.Equal(t, msgInternal, errorText(t, resp))
	}
	assert.Contains(t, e.log.String(), "permission denied", "detail goes to the log only")
}
