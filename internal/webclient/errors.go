package webclient

import (
	"errors"
	"fmt"

	"notes-sync-server/internal/domain"
)

type Kind string

const (
	KindBadURL    Kind = "bad_url"
	KindTransport Kind = "transport"
	KindBadStatus Kind = "bad_status"
	KindDecode    Kind = "decode"
	KindEncode    Kind = "encode"
)

type RequestError struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.Kind == KindBadStatus {
		return fmt.Sprintf("bad status: %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// KindOf returns the request failure kind carried by err, or "" if err did
// not come from Request.
func KindOf(err error) Kind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return ""
}

// DecodeKindOf returns the decode failure kind carried by err, or "".
func DecodeKindOf(err error) domain.DecodeKind {
	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Kind
	}
	return ""
}
