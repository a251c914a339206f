package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/cryptox"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Verdict is the outcome of a token check.
type Verdict int

const (
	// VerdictInvalid: token missing, owned by someone else, or expired.
	VerdictInvalid Verdict = iota
	VerdictValid
	// VerdictIndeterminate: the store could not answer. The accompanying
	// error says why.
	VerdictIndeterminate
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictInvalid:
		return "invalid"
	default:
		return "indeterminate"
	}
}

const msgForbidden = "Missing required token in header, or token is invalid."

// CredentialService hashes passwords and manages the token lifecycle:
// issue at login, verify per request, extend while alive, revoke at logout.
type CredentialService struct {
	repomanager repomanager.RepositoryManager
	secret      string
	validity    time.Duration
	now         func() time.Time
	logger      logging.Logger
}

func NewCredentialService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *CredentialService {
	return &CredentialService{
		repomanager: m,
		secret:      cfg.HashingSecret,
		validity:    cfg.TokenValidity,
		now:         time.Now,
		logger:      logger,
	}
}

// Hash is deterministic for a given password and hashing secret.
func (s *CredentialService) Hash(password string) string {
	return cryptox.HashPassword(password, s.secret)
}

// IssueToken logs phone in. An unknown phone yields common.ErrorNotFound, a
// wrong password common.ErrorInvalidCredentials.
func (s *CredentialService) IssueToken(ctx context.Context, phone, password string) (*models.Token, error) {
	user, err := s.repomanager.Users().Get(ctx, phone)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Public(common.ErrorNotFound, "Could not find the specified user.")
		}
		return nil, wrapStore("read user", err)
	}

	if !cryptox.EqualHashes(user.HashedPassword, s.Hash(password)) {
		return nil, common.Public(common.ErrorInvalidCredentials, "Password did not match the specified user's stored password")
	}

	id, err := common.NewID()
	if err != nil {
		return nil, fmt.Errorf("%w: token id: %w", common.ErrorInternal, err)
	}

	token := &models.Token{
		ID:      id,
		Phone:   phone,
		Expires: s.now().Add(s.validity).UnixMilli(),
	}
	if err := s.repomanager.Tokens().Create(ctx, token); err != nil {
		return nil, wrapStore("create token", err)
	}

	return token, nil
}

// VerifyToken reports whether tokenID is a live token belonging to phone.
// It returns an error only together with VerdictIndeterminate.
func (s *CredentialService) VerifyToken(ctx context.Context, tokenID, phone string) (Verdict, error) {
	if tokenID == "" {
		return VerdictInvalid, nil
	}

	token, err := s.repomanager.Tokens().Find(ctx, tokenID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorInvalidKey) {
			return VerdictInvalid, nil
		}
		return VerdictIndeterminate, wrapStore("read token", err)
	}

	if token.Phone != phone || !token.ValidAt(s.now()) {
		return VerdictInvalid, nil
	}
	return VerdictValid, nil
}

// ExtendToken pushes the expiry of a live token to now + validity. An
// expired token is left untouched and yields common.ErrorExpired.
func (s *CredentialService) ExtendToken(ctx context.Context, tokenID string) (*models.Token, error) {
	repo := s.repomanager.Tokens()

	token, err := s.GetToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !token.ValidAt(now) {
		return nil, common.Public(common.ErrorExpired, "The token has already expired, and cannot be extended.")
	}

	token.Expires = now.Add(s.validity).UnixMilli()
	if err := repo.Update(ctx, token); err != nil {
		return nil, wrapStore("update token", err)
	}

	return token, nil
}

func (s *CredentialService) GetToken(ctx context.Context, tokenID string) (*models.Token, error) {
	token, err := s.repomanager.Tokens().Find(ctx, tokenID)
	if err != nil {
		return nil, tokenLookupError(err)
	}
	return token, nil
}

// RevokeToken deletes the token.
func (s *CredentialService) RevokeToken(ctx context.Context, tokenID string) error {
	if err := s.repomanager.Tokens().Delete(ctx, tokenID); err != nil {
		return tokenLookupError(err)
	}
	return nil
}

func tokenLookupError(err error) error {
	err = wrapStore("token", err)
	if errors.Is(err, common.ErrorNotFound) {
		return common.Public(common.ErrorNotFound, "Specified token does not exist.")
	}
	return err
}

// authorize turns a verdict into an error suitable for the caller:
// invalid tokens are forbidden, indeterminate ones are a storage failure.
func (s *CredentialService) authorize(ctx context.Context, tokenID, phone string) error {
	verdict, err := s.VerifyToken(ctx, tokenID, phone)
	switch verdict {
	case VerdictValid:
		return nil
	case VerdictInvalid:
		return common.Public(common.ErrorForbidden, msgForbidden)
	default:
		s.logger.Error(ctx, "token verification failed", "error", err)
		return err
	}
}

// Create handles POST /tokens: {phone, password}.
func (s *CredentialService) Create(ctx context.Context, in Input) (*models.Token, error) {
	req := struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}{
		Phone:    in.BodyString("phone"),
		Password: in.BodyString("password"),
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Phone, validation.Required, phoneRule, keyRule),
		validation.Field(&req.Password, validation.Required),
	)
	if err := invalid("Missing required field(s)", err); err != nil {
		return nil, err
	}

	return s.IssueToken(ctx, req.Phone, req.Password)
}

// Get handles GET /tokens?id=.
func (s *CredentialService) Get(ctx context.Context, in Input) (*models.Token, error) {
	id, err := idFrom(in.QueryString("id"))
	if err != nil {
		return nil, err
	}
	return s.GetToken(ctx, id)
}

// Update handles PUT /tokens: {id, extend: true}.
func (s *CredentialService) Update(ctx context.Context, in Input) (*models.Token, error) {
	req := struct {
		ID     string `json:"id"`
		Extend bool   `json:"extend"`
	}{
		ID:     in.BodyString("id"),
		Extend: in.BodyBool("extend"),
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.ID, validation.Required, idRule, keyRule),
		validation.Field(&req.Extend, validation.Required),
	)
	if err := invalid("Missing required field(s) or field(s) are invalid", err); err != nil {
		return nil, err
	}

	return s.ExtendToken(ctx, req.ID)
}

// Delete handles DELETE /tokens?id=.
func (s *CredentialService) Delete(ctx context.Context, in Input) error {
	id, err := idFrom(in.QueryString("id"))
	if err != nil {
		return err
	}
	return s.RevokeToken(ctx, id)
}

// idFrom validates a record id taken from a query or body.
func idFrom(id string) (string, error) {
	req := struct {
		ID string `json:"id"`
	}{ID: id}
	err := validation.ValidateStruct(&req, validation.Field(&req.ID, validation.Required, idRule, keyRule))
	if err := invalid("Missing required field, or field invalid", err); err != nil {
		return "", err
	}
	return req.ID, nil
}
