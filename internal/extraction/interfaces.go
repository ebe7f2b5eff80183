package extraction

import (
	"context"
)

// Request is a single completion request sent to a Provider.
type Request struct {
	Instruction string
	Text        string
	Schema      Schema
}

// Provider sends one completion request to a language model and returns its
// text payload. HTTP failures must be reported as *StatusError so the client
// can recognise rate limiting.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}
