package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/sashabaranov/go-openai"

	"github.com/julienb/mentor-go/internal/logger"
)

// FaultKind classifies a failed completion exchange. The kinds are mutually
// exclusive; classification is first-match-wins in the order listed here.
type FaultKind int

const (
	FaultTimeout FaultKind = iota
	FaultConnection
	FaultServer
	FaultMalformed
	FaultEmpty
	FaultUnknown
)

func (k FaultKind) String() string {
	switch k {
	case FaultTimeout:
		return "timeout"
	case FaultConnection:
		return "connection_failure"
	case FaultServer:
		return "server_error"
	case FaultMalformed:
		return "malformed_response"
	case FaultEmpty:
		return "empty_completion"
	default:
		return "unknown_failure"
	}
}

// Fault is the uniform failure result of a completion call.
type Fault struct {
	Kind FaultKind
}

// Message returns the short user-facing text for this fault.
func (f *Fault) Message() string {
	switch f.Kind {
	case FaultTimeout:
		return "Timeout: le modèle est trop lent"
	case FaultConnection:
		return "Impossible de joindre le serveur d'inférence"
	case FaultServer:
		return "Erreur serveur"
	case FaultMalformed:
		return "Réponse invalide"
	case FaultEmpty:
		return "Réponse vide du modèle"
	default:
		return "Erreur technique"
	}
}

func (f *Fault) Error() string {
	return f.Kind.String()
}

// classify maps a client error to a Fault. The catch-all logs the cause's type
// name only, never its message.
func classify(err error) *Fault {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Fault{Kind: FaultTimeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Fault{Kind: FaultTimeout}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Fault{Kind: FaultServer}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Fault{Kind: FaultServer}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Fault{Kind: FaultConnection}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &Fault{Kind: FaultMalformed}
	}

	logger.L.Error("completion failed", "cause", fmt.Sprintf("%T", err))
	return &Fault{Kind: FaultUnknown}
}
