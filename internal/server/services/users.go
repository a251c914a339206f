package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sourcegraph/conc/iter"
)

// cascadeWorkers bounds concurrent check deletions during account removal.
const cascadeWorkers = 4

// CascadeResult lists what an account deletion removed and what it left behind.
type CascadeResult struct {
	Deleted []string `json:"deletedChecks"`
	Failed  []string `json:"failedChecks,omitempty"`
}

type UserService struct {
	repomanager repomanager.RepositoryManager
	credentials *CredentialService
	logger      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, credentials *CredentialService, logger logging.Logger) *UserService {
	return &UserService{repomanager: m, credentials: credentials, logger: logger}
}

// Create handles POST /users. No token is needed.
func (s *UserService) Create(ctx context.Context, in Input) (*models.User, error) {
	req := struct {
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		Phone        string `json:"phone"`
		Password     string `json:"password"`
		TOSAgreement bool   `json:"tosAgreement"`
	}{
		FirstName:    in.BodyString("firstName"),
		LastName:     in.BodyString("lastName"),
		Phone:        in.BodyString("phone"),
		Password:     in.BodyString("password"),
		TOSAgreement: in.BodyBool("tosAgreement"),
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.FirstName, validation.Required),
		validation.Field(&req.LastName, validation.Required),
		validation.Field(&req.Phone, validation.Required, phoneRule, keyRule),
		validation.Field(&req.Password, validation.Required),
		validation.Field(&req.TOSAgreement, validation.Required),
	)
	if err := invalid("Missing required fields", err); err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		HashedPassword: s.credentials.Hash(req.Password),
		TOSAgreement:   true,
		Checks:         []string{},
	}
	if err := s.repomanager.Users().Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Public(common.ErrorAlreadyExists, "A user with that phone number already exists")
		}
		return nil, wrapStore("create user", err)
	}

	pub := user.Public()
	return &pub, nil
}

// Get handles GET /users?phone=.
func (s *UserService) Get(ctx context.Context, in Input) (*models.User, error) {
	phone, err := phoneFrom(in.QueryString("phone"))
	if err != nil {
		return nil, err
	}
	if err := s.credentials.authorize(ctx, in.Token(), phone); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

// Update handles PUT /users: phone plus any of firstName, lastName, password.
func (s *UserService) Update(ctx context.Context, in Input) (*models.User, error) {
	phone, err := phoneFrom(in.BodyString("phone"))
	if err != nil {
		return nil, err
	}

	firstName := in.BodyString("firstName")
	lastName := in.BodyString("lastName")
	password := in.BodyString("password")
	if firstName == "" && lastName == "" && password == "" {
		return nil, missingUpdate("firstName", "lastName", "password")
	}

	if err := s.credentials.authorize(ctx, in.Token(), phone); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	if password != "" {
		user.HashedPassword = s.credentials.Hash(password)
	}

	if err := s.repomanager.Users().Update(ctx, user); err != nil {
		return nil, wrapStore("update user", err)
	}

	pub := user.Public()
	return &pub, nil
}

// Delete handles DELETE /users?phone=. The account goes first, then every
// check it owns. If some checks could not be removed the result is returned
// together with a *common.CascadeError naming them.
func (s *UserService) Delete(ctx context.Context, in Input) (*CascadeResult, error) {
	phone, err := phoneFrom(in.QueryString("phone"))
	if err != nil {
		return nil, err
	}
	if err := s.credentials.authorize(ctx, in.Token(), phone); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	if err := s.repomanager.Users().Delete(ctx, phone); err != nil {
		return nil, wrapStore("delete user", err)
	}

	return s.deleteChecks(ctx, user.Checks)
}

// deleteChecks issues every deletion, then folds the ordered outcomes.
// A check that is already gone counts as deleted.
func (s *UserService) deleteChecks(ctx context.Context, ids []string) (*CascadeResult, error) {
	repo := s.repomanager.Checks()

	mapper := iter.Mapper[string, error]{MaxGoroutines: cascadeWorkers}
	outcomes := mapper.Map(ids, func(id *string) error {
		err := repo.Delete(ctx, *id)
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "check already missing during cascade", "check_id", *id)
			return nil
		}
		return err
	})

	res := &CascadeResult{Deleted: []string{}}
	cerr := &common.CascadeError{}
	for i, err := range outcomes {
		if err == nil {
			res.Deleted = append(res.Deleted, ids[i])
			continue
		}
		res.Failed = append(res.Failed, ids[i])
		cerr.Failed = append(cerr.Failed, ids[i])
		cerr.Causes = append(cerr.Causes, err)
	}

	if len(cerr.Failed) > 0 {
		s.logger.Error(ctx, "cascade delete incomplete", "failed_checks", cerr.Failed, "error", errors.Join(cerr.Causes...))
		return res, cerr
	}
	return res, nil
}

func (s *UserService) getUser(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.repomanager.Users().Get(ctx, phone)
	if err != nil {
		err = wrapStore("read user", err)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Public(common.ErrorNotFound, "Could not find the specified user.")
		}
		return nil, err
	}
	return user, nil
}

func phoneFrom(phone string) (string, error) {
	req := struct {
		Phone string `json:"phone"`
	}{Phone: phone}
	err := validation.ValidateStruct(&req, validation.Field(&req.Phone, validation.Required, phoneRule, keyRule))
	if err := invalid("Missing required field", err); err != nil {
		return "", err
	}
	return req.Phone, nil
}
