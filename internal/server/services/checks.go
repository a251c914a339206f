package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CheckService manages uptime checks on behalf of their owners.
type CheckService struct {
	repomanager repomanager.RepositoryManager
	credentials *CredentialService
	maxChecks   int
	logger      logging.Logger
}

func NewCheckService(m repomanager.RepositoryManager, credentials *CredentialService, cfg *config.Config, logger logging.Logger) *CheckService {
	return &CheckService{
		repomanager: m,
		credentials: credentials,
		maxChecks:   cfg.MaxChecks,
		logger:      logger,
	}
}

type checkFields struct {
	Protocol       string `json:"protocol"`
	URL            string `json:"url"`
	Method         string `json:"method"`
	SuccessCodes   []int  `json:"successCodes"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

func checkFieldsFrom(in Input) (checkFields, map[string]bool) {
	codes, hasCodes := in.BodyWholeNumbers("successCodes")
	timeout, hasTimeout := in.BodyWholeNumber("timeoutSeconds")

	f := checkFields{
		Protocol:       in.BodyString("protocol"),
		URL:            in.BodyString("url"),
		Method:         in.BodyString("method"),
		SuccessCodes:   codes,
		TimeoutSeconds: timeout,
	}
	present := map[string]bool{
		"protocol":       f.Protocol != "",
		"url":            f.URL != "",
		"method":         f.Method != "",
		"successCodes":   hasCodes,
		"timeoutSeconds": hasTimeout,
	}
	return f, present
}

// validate checks f. With all set every field is required; otherwise only
// the fields marked present are checked.
func (f *checkFields) validate(present map[string]bool, all bool) error {
	use := func(name string) bool { return all || present[name] }

	return validation.ValidateStruct(f,
		validation.Field(&f.Protocol, validation.When(use("protocol"), validation.Required, oneOf(models.CheckProtocols))),
		validation.Field(&f.URL, validation.When(use("url"), validation.Required)),
		validation.Field(&f.Method, validation.When(use("method"), validation.Required, oneOf(models.CheckMethods))),
		validation.Field(&f.SuccessCodes, validation.When(use("successCodes"), validation.Required)),
		validation.Field(&f.TimeoutSeconds, validation.When(use("timeoutSeconds"),
			validation.Required,
			validation.Min(models.MinTimeoutSeconds),
			validation.Max(models.MaxTimeoutSeconds),
		)),
	)
}

// Create handles POST /checks. The owner is whoever the presented token
// belongs to.
func (s *CheckService) Create(ctx context.Context, in Input) (*models.Check, error) {
	f, present := checkFieldsFrom(in)
	if err := invalid("Missing required inputs, or inputs are invalid", f.validate(present, true)); err != nil {
		return nil, err
	}

	tokenID := in.Token()
	if tokenID == "" {
		return nil, common.Public(common.ErrorForbidden, msgForbidden)
	}
	token, err := s.credentials.GetToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Public(common.ErrorForbidden, msgForbidden)
		}
		return nil, err
	}
	phone := token.Phone

	if err := s.credentials.authorize(ctx, tokenID, phone); err != nil {
		return nil, err
	}

	users := s.repomanager.Users()
	user, err := users.Get(ctx, phone)
	if err != nil {
		err = wrapStore("read user", err)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Public(common.ErrorForbidden, msgForbidden)
		}
		return nil, err
	}

	if len(user.Checks) >= s.maxChecks {
		return nil, common.Public(common.ErrorQuotaExceeded,
			fmt.Sprintf("The user already has the maximum number of checks (%d).", s.maxChecks))
	}

	id, err := common.NewID()
	if err != nil {
		return nil, fmt.Errorf("%w: check id: %w", common.ErrorInternal, err)
	}

	check := &models.Check{
		ID:             id,
		UserPhone:      phone,
		Protocol:       f.Protocol,
		URL:            f.URL,
		Method:         f.Method,
		SuccessCodes:   f.SuccessCodes,
		TimeoutSeconds: f.TimeoutSeconds,
	}
	checksRepo := s.repomanager.Checks()
	if err := checksRepo.Create(ctx, check); err != nil {
		return nil, wrapStore("create check", err)
	}

	user.Checks = append(user.Checks, id)
	if err := users.Update(ctx, user); err != nil {
		if derr := checksRepo.Delete(ctx, id); derr != nil {
			s.logger.Error(ctx, "orphaned check left behind", "check_id", id, "error", derr)
		}
		return nil, fmt.Errorf("%w: link check to user: %w", common.ErrorStorage, err)
	}

	return check, nil
}

// Get handles GET /checks?id=.
func (s *CheckService) Get(ctx context.Context, in Input) (*models.Check, error) {
	id, err := idFrom(in.QueryString("id"))
	if err != nil {
		return nil, err
	}
	return s.ownedCheck(ctx, id, in.Token())
}

// Update handles PUT /checks: id plus any subset of the check fields.
// Provided fields replace the stored ones; the rest are kept.
func (s *CheckService) Update(ctx context.Context, in Input) (*models.Check, error) {
	id, err := idFrom(in.BodyString("id"))
	if err != nil {
		return nil, err
	}

	f, present := checkFieldsFrom(in)
	provided := false
	for _, p := range present {
		provided = provided || p
	}
	if !provided {
		return nil, missingUpdate("method", "protocol", "successCodes", "timeoutSeconds", "url")
	}
	if err := invalid("Invalid fields to update", f.validate(present, false)); err != nil {
		return nil, err
	}

	check, err := s.ownedCheck(ctx, id, in.Token())
	if err != nil {
		return nil, err
	}

	if present["protocol"] {
		check.Protocol = f.Protocol
	}
	if present["url"] {
		check.URL = f.URL
	}
	if present["method"] {
		check.Method = f.Method
	}
	if present["successCodes"] {
		check.SuccessCodes = f.SuccessCodes
	}
	if present["timeoutSeconds"] {
		check.TimeoutSeconds = f.TimeoutSeconds
	}

	if err := s.repomanager.Checks().Update(ctx, check); err != nil {
		return nil, wrapStore("update check", err)
	}
	return check, nil
}

// Delete handles DELETE /checks?id=. The check record goes first, then its
// id is removed from the owner's check set. An owner that does not list the
// check is reported as common.ErrorInconsistent.
func (s *CheckService) Delete(ctx context.Context, in Input) error {
	id, err := idFrom(in.QueryString("id"))
	if err != nil {
		return err
	}

	check, err := s.ownedCheck(ctx, id, in.Token())
	if err != nil {
		return err
	}

	if err := s.repomanager.Checks().Delete(ctx, id); err != nil {
		return wrapStore("delete check", err)
	}

	users := s.repomanager.Users()
	user, err := users.Get(ctx, check.UserPhone)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("check %s: owner %s missing: %w", id, check.UserPhone, common.ErrorInconsistent)
		}
		return wrapStore("read owner", err)
	}

	if !user.RemoveCheck(id) {
		return fmt.Errorf("check %s not listed by owner %s: %w", id, check.UserPhone, common.ErrorInconsistent)
	}
	if err := users.Update(ctx, user); err != nil {
		return wrapStore("update owner", err)
	}

	return nil
}

func (s *CheckService) ownedCheck(ctx context.Context, id, tokenID string) (*models.Check, error) {
	check, err := s.repomanager.Checks().Get(ctx, id)
	if err != nil {
		err = wrapStore("read check", err)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Public(common.ErrorNotFound, "Check ID did not exist.")
		}
		return nil, err
	}

	if err := s.credentials.authorize(ctx, tokenID, check.UserPhone); err != nil {
		return nil, err
	}
	return check, nil
}
