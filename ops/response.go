package ops

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Response is the normalized shape returned to callers for every read and
// write, whether it was served from cache, collapsed onto another caller's
// request, or fetched fresh.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Kind    ErrorKind       `json:"kind,omitempty"`
}

// OK wraps already-encoded data in a successful Response.
func OK(data json.RawMessage) Response {
	return Response{Success: true, Data: data}
}

// Fail converts err into a failed Response. A nil err yields a generic
// failure so a Response with Success=false always carries a message.
func Fail(err error) Response {
	if err == nil {
		return Response{Success: false, Error: "unknown error", Kind: KindTransport}
	}
	return Response{Success: false, Error: err.Error(), Kind: KindOf(err)}
}

// Err returns the failure carried by r as an *Error, or nil on success.
func (r Response) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: r.Kind, Msg: r.Error}
}

// Decode unmarshals r.Data into v.
func (r Response) Decode(v any) error {
	if !r.Success {
		return r.Err()
	}
	if len(r.Data) == 0 {
		return errors.New("response carries no data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
