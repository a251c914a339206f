package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/services"
	"github.com/spf13/afero"
)

// ErrUsage is returned for an unknown command or missing arguments.
var ErrUsage = errors.New("usage: uptimectl [-d dir] list users|checks|tokens | login <phone> | hash")

type App struct {
	config      *config.Config
	repomanager repomanager.RepositoryManager
	credentials *services.CredentialService
	out         io.Writer
}

func NewApp(c *config.Config, fs afero.Fs, out io.Writer) (*App, error) {
	rm, err := repomanager.NewFileRepositoryManager(fs, c.DataDir)
	if err != nil {
		return nil, err
	}

	return &App{
		config:      c,
		repomanager: rm,
		credentials: services.NewCredentialService(rm, c, logging.NewNop()),
		out:         out,
	}, nil
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "list":
		if len(args) != 2 {
			return ErrUsage
		}
		return a.list(ctx, args[1])
	case "login":
		if len(args) != 2 {
			return ErrUsage
		}
		return a.login(ctx, args[1])
	case "hash":
		return a.hash()
	case "help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	default:
		return ErrUsage
	}
}

func (a *App) list(ctx context.Context, resource string) error {
	var (
		keys []string
		err  error
	)
	switch resource {
	case common.ResourceUsers:
		keys, err = a.repomanager.Users().List(ctx)
	case common.ResourceChecks:
		keys, err = a.repomanager.Checks().List(ctx)
	case common.ResourceTokens:
		keys, err = a.repomanager.Tokens().List(ctx)
	default:
		return ErrUsage
	}
	if err != nil {
		return err
	}

	for _, k := range keys {
		fmt.Fprintln(a.out, k)
	}
	return nil
}

func (a *App) login(ctx context.Context, phone string) error {
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	token, err := a.credentials.IssueToken(ctx, phone, string(pw))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (expires %s)\n", token.ID, token.ExpiresAt().UTC().Format(time.RFC3339))
	return nil
}

func (a *App) hash() error {
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	fmt.Fprintln(a.out, a.credentials.Hash(string(pw)))
	return nil
}
