package response

import (
	"encoding/json"
	"fmt"
)

// Result is the uniform outcome of every pipeline node: either
// {success: true, data: T} or {success: false, message: string}.
// Data is only meaningful when Success is true.
type Result[T any] struct {
	Success bool
	Data    T
	Message string
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](format string, args ...any) Result[T] {
	return Result[T]{Message: fmt.Sprintf(format, args...)}
}

// Get returns the payload and whether it can be trusted.
func (r Result[T]) Get() (T, bool) {
	if !r.Success {
		var zero T
		return zero, false
	}
	return r.Data, true
}

type resultJSON[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := resultJSON[T]{Success: r.Success}
	if r.Success {
		out.Data = &r.Data
	} else {
		out.Message = r.Message
	}
	return json.Marshal(out)
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var in resultJSON[T]
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*r = Result[T]{Success: in.Success, Message: in.Message}
	if in.Success && in.Data != nil {
		r.Data = *in.Data
	}
	return nil
}
