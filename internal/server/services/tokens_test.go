package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Deterministic(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, f.creds.Hash("pw"), f.creds.Hash("pw"))
	assert.NotEqual(t, f.creds.Hash("pw"), f.creds.Hash("pw2"))
}

func TestIssueToken(t *testing.T) {
	f := newFixture(t)
	f.signup(t, testPhone)

	tok := f.login(t, testPhone)

	assert.Len(t, tok.ID, 20)
	assert.Equal(t, testPhone, tok.Phone)
	assert.Equal(t, f.now.Add(time.Hour).UnixMilli(), tok.Expires)

	stored, err := f.rm.Tokens().Find(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, tok, stored)
}

func TestIssueToken_Failures(t *testing.T) {
	f := newFixture(t)
	f.signup(t, testPhone)
	ctx := context.Background()

	_, err := f.creds.IssueToken(ctx, otherPhone, testPassword)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.creds.IssueToken(ctx, testPhone, "wrong")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)

	keys, err := f.rm.Tokens().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestVerifyToken(t *testing.T) {
	f := newFixture(t)
	f.signup(t, testPhone)
	tok := f.login(t, testPhone)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		phone   string
		advance time.Duration
		want    Verdict
	}{
		{name: "valid", id: tok.ID, phone: testPhone, want: VerdictValid},
		{name: "empty id", id: "", phone: testPhone, want: VerdictInvalid},
		{name: "unknown id", id: "0123456789abcdef0123", phone: testPhone, want: VerdictInvalid},
		{name: "malformed id", id: "../users/5551234567", phone: testPhone, want: VerdictInvalid},
		{name: "other phone", id: tok.ID, phone: otherPhone, want: VerdictInvalid},
		{name: "just before expiry", id: tok.ID, phone: testPhone, advance: time.Hour - time.Millisecond, want: VerdictValid},
		{name: "at expiry", id: tok.ID, phone: testPhone, advance: time.Hour, want: VerdictInvalid},
		{name: "long expired", id: tok.ID, phone: testPhone, advance: 48 * time.Hour, want: VerdictInvalid},
	}

	start := f.now
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.now = start.Add(tt.advance)
			got, err := f.creds.VerifyToken(ctx, tt.id, tt.phone)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyToken_CorruptRecordIsIndeterminate(t *testing.T) {
	f := newFixture(t)
	id := "abcdefabcdefabcdefab"
	require.NoError(t, afero.WriteFile(f.fs, "/data/tokens/"+id+".json", []byte("{oops"), 0o600))

	got, err := f.creds.VerifyToken(context.Background(), id, testPhone)
	assert.Equal(t, VerdictIndeterminate, got)
	require.ErrorIs(t, err, common.ErrorStorage)
	require.ErrorIs(t, err, common.ErrorCorrupt)

	_, err = f.users.Get(context.Background(), Input{
		Query:   map[string]string{"phone": testPhone},
		Headers: authHeader(id),
	})
	require.ErrorIs(t, err, common.ErrorStorage)
	assert.NotErrorIs(t, err, common.ErrorForbidden)
}

func TestExtendToken(t *testing.T) {
	f := newFixture(t)
	f.signup(t, testPhone)
	tok := f.login(t, testPhone)

	f.now = f.now.Add(30 * time.Minute)
	ext, err := f.creds.ExtendToken(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(time.Hour).UnixMilli(), ext.Expires)

	stored, err := f.rm.Tokens().Find(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, ext.Expires, stored.Expires)
}

func TestExtendToken_Expired(t *testing.T) {
	f := newFixture(t)
	f.signup(t, testPhone)
	tok := f.login(t, testPhone)

	f.now = f.now.Add(2 * time.Hour)
	_, err := f.creds.ExtendToken(context.Background(), tok.ID)
	require.ErrorIs(t, err, common.ErrorExpired)

	stored, err := f.rm.Tokens().Find(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, tok.Expires, stored.Expires, "expired token must not be touched")
}

func TestExtendToken_Missing(t *testing.T) {
	f := newFixture(t)
	_, err := f.creds.ExtendToken(context.Background(), "0123456789abcdef0123")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTokenEndpoints(t *testing.T) {
	f := newFixture(t)
	f.signup(t, testPhone)
	ctx := context.Background()

	tok, err := f.creds.Create(ctx, Input{Body: map[string]any{"phone": testPhone, "password": testPassword}})
	require.NoError(t, err)

	got, err := f.creds.Get(ctx, Input{Query: map[string]string{"id": tok.ID}})
	require.NoError(t, err)
	assert.Equal(t, tok, got)

	f.now = f.now.Add(10 * time.Minute)
	ext, err := f.creds.Update(ctx, Input{Body: map[string]any{"id": tok.ID, "extend": true}})
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(time.Hour).UnixMilli(), ext.Expires)

	require.NoError(t, f.creds.Delete(ctx, Input{Query: map[string]string{"id": tok.ID}}))
	_, err = f.creds.Get(ctx, Input{Query: map[string]string{"id": tok.ID}})
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.ErrorIs(t, f.creds.Delete(ctx, Input{Query: map[string]string{"id": tok.ID}}), common.ErrorNotFound)
}

func TestTokenEndpoints_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		fields []string
	}{
		{
			name: "create empty",
			call: func() error {
				_, err := f.creds.Create(ctx, Input{Body: map[string]any{}})
				return err
			},
			fields: []string{"password", "phone"},
		},
		{
			name: "create short phone",
			call: func() error {
				_, err := f.creds.Create(ctx, Input{Body: map[string]any{"phone": "123", "password": "x"}})
				return err
			},
			fields: []string{"phone"},
		},
		{
			name: "get bad id",
			call: func() error {
				_, err := f.creds.Get(ctx, Input{Query: map[string]string{"id": "short"}})
				return err
			},
			fields: []string{"id"},
		},
		{
			name: "update without extend",
			call: func() error {
				_, err := f.creds.Update(ctx, Input{Body: map[string]any{"id": "0123456789abcdef0123", "extend": false}})
				return err
			},
			fields: []string{"extend"},
		},
		{
			name: "update extend as string",
			call: func() error {
				_, err := f.creds.Update(ctx, Input{Body: map[string]any{"id": "0123456789abcdef0123", "extend": "true"}})
				return err
			},
			fields: []string{"extend"},
		},
		{
			name: "delete missing id",
			call: func() error {
				return f.creds.Delete(ctx, Input{})
			},
			fields: []string{"id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, common.ErrorInvalidInput)

			var verr *common.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.fields, verr.Fields)
		})
	}
}
