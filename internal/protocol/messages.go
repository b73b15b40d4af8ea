package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Request asks the worker to render one game.
type Request struct {
	Notation   string `json:"notation"`
	DarkColor  string `json:"dark_color"`
	LightColor string `json:"light_color"`
}

// Kind tags the Response variant.
type Kind string

const (
	KindBytes Kind = "bytes"
	KindError Kind = "error"
)

// Response is the single reply the worker emits for a request. Build it with
// Success or Failure.
type Response struct {
	Kind    Kind   `json:"kind"`
	Data    []byte `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success wraps rendered bytes. The response takes ownership of data.
func Success(data []byte) Response {
	return Response{Kind: KindBytes, Data: data}
}

// Failure wraps a user-visible error message.
func Failure(message string) Response {
	return Response{Kind: KindError, Message: message}
}

// IsSuccess reports whether the response carries bytes.
func (r Response) IsSuccess() bool {
	return r.Kind == KindBytes
}

// Err returns the failure as an error, nil for a success.
func (r Response) Err() error {
	if r.Kind != KindError {
		return nil
	}
	return errors.New(r.Message)
}

// Validate checks the tagged-union invariant.
func (r Response) Validate() error {
	switch r.Kind {
	case KindBytes:
		if len(r.Data) == 0 {
			return errors.New("bytes response without data")
		}
		if r.Message != "" {
			return errors.New("bytes response must not carry a message")
		}
	case KindError:
		if r.Message == "" {
			return errors.New("error response without message")
		}
		if len(r.Data) != 0 {
			return errors.New("error response must not carry data")
		}
	default:
		return fmt.Errorf("unknown response kind %q", r.Kind)
	}
	return nil
}

// UnmarshalJSON decodes a response and rejects malformed variants.
func (r *Response) UnmarshalJSON(b []byte) error {
	type wire Response
	var decoded wire
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}
	resp := Response(decoded)
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	*r = resp
	return nil
}
