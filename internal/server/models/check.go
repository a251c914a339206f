package models

import (
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Check states recorded by the check runner.
const (
	CheckStateUp   = "up"
	CheckStateDown = "down"
)

var (
	CheckProtocols = []string{"http", "https"}
	CheckMethods   = []string{"post", "get", "put", "delete"}
)

const (
	MinTimeoutSeconds = 1
	MaxTimeoutSeconds = 5
)

// Check is an uptime-monitoring definition owned by one user.
//
// State and LastChecked are written by the check runner only; they are empty
// until the first probe.
type Check struct {
	ID             string `json:"id"`
	UserPhone      string `json:"userPhone"`
	Protocol       string `json:"protocol"`
	URL            string `json:"url"`
	Method         string `json:"method"`
	SuccessCodes   []int  `json:"successCodes"`
	TimeoutSeconds int    `json:"timeoutSeconds"`

	State       string `json:"state,omitempty"`
	LastChecked int64  `json:"lastChecked,omitempty"`
}

// Accepts reports whether status is one of the check's success codes.
func (c *Check) Accepts(status int) bool {
	return slices.Contains(c.SuccessCodes, status)
}

// Validate reports whether a stored check is well formed enough to probe.
func (c Check) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.UserPhone, validation.Required),
		validation.Field(&c.Protocol, validation.Required, validation.In(toAny(CheckProtocols)...)),
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Method, validation.Required, validation.In(toAny(CheckMethods)...)),
		validation.Field(&c.SuccessCodes, validation.Required),
		validation.Field(&c.TimeoutSeconds, validation.Required,
			validation.Min(MinTimeoutSeconds), validation.Max(MaxTimeoutSeconds)),
	)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
