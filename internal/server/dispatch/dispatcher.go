// Package dispatch routes a parsed request to the service operation that
// owns it and turns the outcome into a status code and JSON payload.
package dispatch

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/services"
)

// ResourcePing answers liveness probes.
const ResourcePing = "ping"

// Request is a transport-neutral inbound call.
type Request struct {
	Method   string
	Resource string
	Query    map[string]string
	Headers  map[string]string
	Body     map[string]any
}

// Response is what the transport should write back. A nil Payload is an
// empty JSON object.
type Response struct {
	Status  int
	Payload any
}

// Operation runs one service call.
type Operation func(ctx context.Context, in services.Input) (any, error)

// Dispatcher holds the resource × method table. It is built once and never
// modified afterwards.
type Dispatcher struct {
	table  map[string]map[string]Operation
	logger logging.Logger
}

func NewDispatcher(tokens *services.CredentialService, users *services.UserService, checks *services.CheckService, logger logging.Logger) *Dispatcher {
	table := map[string]map[string]Operation{
		ResourcePing: {
			http.MethodGet: func(context.Context, services.Input) (any, error) { return nil, nil },
		},
		common.ResourceUsers: {
			http.MethodPost:   op(users.Create),
			http.MethodGet:    op(users.Get),
			http.MethodPut:    op(users.Update),
			http.MethodDelete: op(users.Delete),
		},
		common.ResourceTokens: {
			http.MethodPost:   op(tokens.Create),
			http.MethodGet:    op(tokens.Get),
			http.MethodPut:    op(tokens.Update),
			http.MethodDelete: noPayload(tokens.Delete),
		},
		common.ResourceChecks: {
			http.MethodPost:   op(checks.Create),
			http.MethodGet:    op(checks.Get),
			http.MethodPut:    op(checks.Update),
			http.MethodDelete: noPayload(checks.Delete),
		},
	}

	return &Dispatcher{table: table, logger: logger}
}

func op[T any](f func(context.Context, services.Input) (T, error)) Operation {
	return func(ctx context.Context, in services.Input) (any, error) {
		return f(ctx, in)
	}
}

func noPayload(f func(context.Context, services.Input) error) Operation {
	return func(ctx context.Context, in services.Input) (any, error) {
		return nil, f(ctx, in)
	}
}

// Dispatch looks up the operation for req and runs it. Unknown resources
// yield 404, known resources with an unregistered method 405.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	methods, ok := d.table[req.Resource]
	if !ok {
		return d.failure(ctx, req, common.Public(common.ErrorNotFound, "Not found"))
	}

	operation, ok := methods[req.Method]
	if !ok {
		return d.failure(ctx, req, common.Public(common.ErrorMethodNotAllowed, "Method not allowed"))
	}

	payload, err := operation(ctx, services.Input{
		Query:   req.Query,
		Headers: req.Headers,
		Body:    req.Body,
	})
	if err != nil {
		return d.failure(ctx, req, err)
	}

	return Response{Status: http.StatusOK, Payload: payload}
}

func (d *Dispatcher) failure(ctx context.Context, req Request, err error) Response {
	rich := Envelope(err)

	if rich.Code >= http.StatusInternalServerError {
		d.logger.Error(ctx, "request failed",
			"resource", req.Resource,
			"method", req.Method,
			"text_code", rich.TextCode,
			"error", err.Error(),
		)
	}

	payload := map[string]any{"Error": rich.Message}

	var cerr *common.CascadeError
	if errors.As(err, &cerr) {
		payload["failedChecks"] = cerr.Failed
	}

	return Response{Status: rich.Code, Payload: payload}
}
