package client

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core/models"
)

var null = []byte("null")

// Envelope is the JSON wrapper returned by every endpoint: `{data, meta, error}`.
// Absence of Error means success.
type Envelope struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Meta   json.RawMessage `json:"meta,omitempty"`
	Error  string          `json:"error,omitempty"`
	Errors []string        `json:"errors,omitempty"`
	Status int             `json:"-"`

	kind      ErrorKind
	retryable bool
	cause     error
}

// UnmarshalJSON accepts `error` as a string, a list of strings or an object of field messages.
func (env *Envelope) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data   json.RawMessage `json:"data"`
		Meta   json.RawMessage `json:"meta"`
		Error  json.RawMessage `json:"error"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	env.Data = raw.Data
	env.Meta = raw.Meta
	env.Errors = decodeMessages(raw.Errors)
	if msgs := decodeMessages(raw.Error); len(msgs) > 0 {
		env.Error = msgs[0]
		if len(env.Errors) == 0 {
			env.Errors = msgs
		}
	}
	if env.Error == "" && len(env.Errors) > 0 {
		env.Error = env.Errors[0]
	}
	if env.Error != "" && len(env.Errors) == 0 {
		env.Errors = []string{env.Error}
	}
	return nil
}

func decodeMessages(b json.RawMessage) []string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		return list
	}
	var fields map[string]string
	if err := json.Unmarshal(b, &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, 0, len(keys))
		for _, k := range keys {
			msgs = append(msgs, fields[k])
		}
		return msgs
	}
	return []string{string(b)}
}

// Failed reports whether the envelope carries an error.
func (env Envelope) Failed() bool {
	return env.Error != ""
}

// Err returns the envelope error as a *Error, or nil on success.
func (env Envelope) Err() error {
	if !env.Failed() {
		return nil
	}
	kind := env.kind
	if kind == 0 {
		kind = KindApplication
	}
	errs := env.Errors
	if len(errs) == 0 {
		errs = []string{env.Error}
	}
	return &Error{
		Kind:      kind,
		Message:   env.Error,
		Errors:    errs,
		Status:    env.Status,
		Retryable: env.retryable,
		Err:       env.cause,
	}
}

// Meta is the decoded `meta` member of an envelope.
type Meta struct {
	Teacher *models.Teacher `json:"teacher,omitempty"`
	Total   int             `json:"total,omitempty"`
}

// Result is the typed shape every client method returns. Envelope keeps the raw response.
type Result[T any] struct {
	Data     T
	Meta     Meta
	Envelope Envelope
}

// decode turns an envelope into a Result[T]; failed envelopes become a *Error.
func decode[T any](env Envelope) (Result[T], error) {
	res := Result[T]{Envelope: env}
	if err := env.Err(); err != nil {
		return res, err
	}
	if data := bytes.TrimSpace(env.Data); len(data) > 0 && !bytes.Equal(data, null) {
		if err := json.Unmarshal(data, &res.Data); err != nil {
			return res, decodeError(env, errors.Wrap(err, "decoding data"))
		}
	}
	if meta := bytes.TrimSpace(env.Meta); len(meta) > 0 && !bytes.Equal(meta, null) {
		if err := json.Unmarshal(meta, &res.Meta); err != nil {
			return res, decodeError(env, errors.Wrap(err, "decoding meta"))
		}
	}
	return res, nil
}

func decodeError(env Envelope, cause error) error {
	return transportError(errInvalidBody, env.Status, false, cause).Err()
}
