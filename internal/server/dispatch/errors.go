package dispatch

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by the error envelope.
const (
	TextCodeInvalidInput     = "INVALID_INPUT"
	TextCodeBadCredentials   = "INVALID_CREDENTIALS"
	TextCodeQuotaExceeded    = "QUOTA_EXCEEDED"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeForbidden        = "FORBIDDEN"
	TextCodeNotFound         = "NOT_FOUND"
	TextCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	TextCodeAlreadyExists    = "ALREADY_EXISTS"
	TextCodePartialCascade   = "PARTIAL_CASCADE_FAILURE"
	TextCodeInternal         = "INTERNAL_ERROR"
)

const (
	msgInternal       = "An unexpected error occurred"
	msgPartialCascade = "Errors encountered while attempting to delete all of the user's checks. " +
		"All checks may not have been deleted from the system successfully."
)

type mapping struct {
	kind     error
	category goerrors.Category
	code     int
	textCode string
	fallback string
}

// Order matters: the cascade error also unwraps to its storage causes, and
// internal failures must win over whatever 4xx sentinel they wrap.
var mappings = []mapping{
	{common.ErrorPartialCascade, goerrors.CategoryInternal, http.StatusInternalServerError, TextCodePartialCascade, msgPartialCascade},
	{common.ErrorStorage, goerrors.CategoryInternal, http.StatusInternalServerError, TextCodeInternal, msgInternal},
	{common.ErrorCorrupt, goerrors.CategoryInternal, http.StatusInternalServerError, TextCodeInternal, msgInternal},
	{common.ErrorInconsistent, goerrors.CategoryInternal, http.StatusInternalServerError, TextCodeInternal, msgInternal},
	{common.ErrorInternal, goerrors.CategoryInternal, http.StatusInternalServerError, TextCodeInternal, msgInternal},
	{common.ErrorInvalidInput, goerrors.CategoryValidation, http.StatusBadRequest, TextCodeInvalidInput, "Missing required fields"},
	{common.ErrorInvalidCredentials, goerrors.CategoryAuth, http.StatusBadRequest, TextCodeBadCredentials, "Invalid credentials"},
	{common.ErrorQuotaExceeded, goerrors.CategoryRateLimit, http.StatusBadRequest, TextCodeQuotaExceeded, "Quota exceeded"},
	{common.ErrorExpired, goerrors.CategoryBadInput, http.StatusBadRequest, TextCodeTokenExpired, "The token has expired"},
	{common.ErrorForbidden, goerrors.CategoryAuthz, http.StatusForbidden, TextCodeForbidden, "Forbidden"},
	{common.ErrorNotFound, goerrors.CategoryNotFound, http.StatusNotFound, TextCodeNotFound, "Not found"},
	{common.ErrorMethodNotAllowed, goerrors.CategoryBadInput, http.StatusMethodNotAllowed, TextCodeMethodNotAllowed, "Method not allowed"},
	{common.ErrorAlreadyExists, goerrors.CategoryConflict, http.StatusConflict, TextCodeAlreadyExists, "Already exists"},
}

// Envelope classifies err. Caller-facing errors keep their message;
// internal ones are replaced by a generic text.
func Envelope(err error) *goerrors.Error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}

	for _, m := range mappings {
		if !errors.Is(err, m.kind) {
			continue
		}
		message := m.fallback
		if m.code < http.StatusInternalServerError {
			message = publicMessage(err, m.fallback)
		}
		return goerrors.Wrap(err, m.category, message).
			WithCode(m.code).
			WithTextCode(m.textCode)
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, msgInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeInternal)
}

func publicMessage(err error, fallback string) string {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var perr *common.PublicError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return fallback
}
