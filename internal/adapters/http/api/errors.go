package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/eventquote/internal/adapters/marketdata"
	"github.com/okian/eventquote/internal/adapters/repository"
	service "github.com/okian/eventquote/internal/app"
	"github.com/okian/eventquote/internal/domain/model"
)

// Sentinel kinds for API errors. Every error written to a client is
// classified as exactly one of these.
var (
	ErrValidation = errors.New("validation")
	ErrBadRequest = errors.New("bad request")
	ErrStore      = errors.New("store")
	ErrUpstream   = errors.New("upstream")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal")
)

// KindError tags a cause with the operation that failed and its kind.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns a KindError without an underlying cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind returns a KindError with an explicit kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// Wrap classifies an error returned by the service layer.
func Wrap(op string, err error) error {
	var ke *KindError
	if errors.As(err, &ke) {
		return err
	}
	return WrapKind(op, classify(err), err)
}

func classify(err error) error {
	switch {
	case errors.Is(err, model.ErrMissingFields):
		return ErrValidation
	case errors.Is(err, model.ErrInvalidBody):
		return ErrBadRequest
	case errors.Is(err, repository.ErrStore), errors.Is(err, service.ErrNotStarted):
		return ErrStore
	case errors.Is(err, marketdata.ErrUpstream):
		return ErrUpstream
	default:
		return ErrInternal
	}
}

// kindResponse is the status and client-facing message of one kind.
// passThrough kinds expose the cause when verbose errors are enabled.
type kindResponse struct {
	status      int
	message     string
	passThrough bool
}

var kindTable = map[error]kindResponse{
	ErrValidation: {status: http.StatusBadRequest, message: "Missing fields"},
	ErrBadRequest: {status: http.StatusBadRequest, message: "Invalid JSON body"},
	ErrStore:      {status: http.StatusInternalServerError, message: "document store unavailable", passThrough: true},
	ErrUpstream:   {status: http.StatusBadRequest, message: "market data unavailable", passThrough: true},
	ErrNotFound:   {status: http.StatusNotFound, message: "Not found"},
	ErrInternal:   {status: http.StatusInternalServerError, message: "Internal server error"},
}

// resolve returns the kind, status and payload message for err.
func resolve(err error, verbose bool) (kind error, status int, message string) {
	var ke *KindError
	if !errors.As(err, &ke) {
		ke = &KindError{Kind: classify(err), Err: err}
	}
	resp, ok := kindTable[ke.Kind]
	if !ok {
		ke.Kind, resp = ErrInternal, kindTable[ErrInternal]
	}
	message = resp.message
	if verbose && resp.passThrough && ke.Err != nil {
		message = ke.Err.Error()
	}
	return ke.Kind, resp.status, message
}
