package errs

import (
	"errors"
	"strconv"
	"strings"

	pkgerr "github.com/pkg/errors"
)

// CodeError is the error currency of the service: a stable numeric code,
// a short message and an optional free-form detail. Handlers map the code
// to an HTTP status, everything else compares errors by code.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// WithDetail returns a copy carrying extra detail; the receiver is unchanged
// so the predefined sentinels stay clean.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// WrapMsg attaches detail and a stack trace.
func (e *CodeError) WrapMsg(msg string, kv ...any) error {
	return pkgerr.WithStack(e.WithDetail(toString(msg, kv)))
}

// Is matches by code, so WithDetail/WrapMsg copies still compare equal
// to their sentinel under errors.Is.
func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

// New builds an ad-hoc error with key/value detail, stack attached.
func New(msg string, kv ...any) error {
	return pkgerr.New(toString(msg, kv))
}

// Wrap attaches a stack trace if err carries none.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return pkgerr.WithStack(err)
}

// WrapMsg annotates err with a message plus key/value detail.
func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return pkgerr.WithMessage(err, toString(msg, kv))
}

func toString(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i > 0 || msg != "" {
			sb.WriteString(", ")
		}
		key, _ := kv[i].(string)
		sb.WriteString(key)
		sb.WriteString("=")
		if i+1 < len(kv) {
			sb.WriteString(toValueString(kv[i+1]))
		}
	}
	return sb.String()
}

func toValueString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return "?"
	}
}
