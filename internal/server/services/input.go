// Package services contains server-side business logic: credentials,
// user accounts and uptime checks. Every endpoint operation takes an Input
// built by the transport layer and returns a typed result or an error
// matching one of the common sentinels.
package services

import (
	"math"
	"strings"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
)

// Input is a parsed request. Query values are trimmed and header names
// lower-cased by the caller. Body holds the decoded JSON object; a value of
// the wrong JSON type is treated as missing.
type Input struct {
	Query   map[string]string
	Headers map[string]string
	Body    map[string]any
}

// QueryString returns the trimmed query value for key.
func (in Input) QueryString(key string) string {
	return strings.TrimSpace(in.Query[key])
}

// Token returns the bearer token presented in the request headers.
func (in Input) Token() string {
	return strings.TrimSpace(in.Headers[common.TokenHeaderName])
}

// BodyString returns the trimmed string at key, or "" if absent or not a string.
func (in Input) BodyString(key string) string {
	s, _ := in.Body[key].(string)
	return strings.TrimSpace(s)
}

// BodyBool reports whether key holds the JSON literal true.
func (in Input) BodyBool(key string) bool {
	b, _ := in.Body[key].(bool)
	return b
}

// BodyWholeNumber returns the number at key and whether key holds a number.
// A number with a fractional part comes back as -1 so range rules reject it.
func (in Input) BodyWholeNumber(key string) (int, bool) {
	f, ok := in.Body[key].(float64)
	if !ok {
		return 0, false
	}
	n, whole := wholeNumber(f)
	if !whole {
		return -1, true
	}
	return n, true
}

// BodyWholeNumbers returns the list of whole numbers at key and whether key
// holds an array. If any element is not a non-negative whole number the
// result is empty, so a required rule rejects it.
func (in Input) BodyWholeNumbers(key string) ([]int, bool) {
	raw, ok := in.Body[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return []int{}, true
		}
		n, whole := wholeNumber(f)
		if !whole || n < 0 {
			return []int{}, true
		}
		out = append(out, n)
	}
	return out, true
}

func wholeNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
