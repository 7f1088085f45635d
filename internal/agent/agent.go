// Package agent implements the conversation controller: the password gate and
// the chat turn flow (append user input, exchange the transcript with the
// completion endpoint, record the reply, persist). Session state moves only
// through the controller's methods.
package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/qmuntal/stateless"

	"github.com/julienb/mentor-go/internal/history"
	"github.com/julienb/mentor-go/internal/llm"
	"github.com/julienb/mentor-go/internal/logger"
	"github.com/julienb/mentor-go/internal/registry"
	"github.com/julienb/mentor-go/internal/session"
)

// Auth states, stored on the session between calls.
const (
	StateUnauthenticated = "Unauthenticated"
	StateActive          = "Active"
)

// FSM states and triggers for a single chat turn.
type FSMState = stateless.State

type FSMTrigger = stateless.Trigger

var (
	StateReadyToCallModel FSMState = "ReadyToCallModel"
	StateRecordingReply   FSMState = "RecordingReply"
	StateTurnDone         FSMState = "TurnDone"
	StateTurnFailed       FSMState = "TurnFailed"
)

var (
	TriggerTurnSubmitted FSMTrigger = "TurnSubmitted"
	TriggerModelReplied  FSMTrigger = "ModelReplied"
	TriggerModelFailed   FSMTrigger = "ModelFailed"
	TriggerReplyRecorded FSMTrigger = "ReplyRecorded"
)

// Auth triggers.
var (
	TriggerCredentialAccepted FSMTrigger = "CredentialAccepted"
	TriggerCredentialRejected FSMTrigger = "CredentialRejected"
)

var (
	// ErrNotAuthenticated is returned when a gated session has not passed the password check.
	ErrNotAuthenticated = errors.New("session is not authenticated")
	// ErrBadPassword is returned on a credential mismatch; the session stays unauthenticated.
	ErrBadPassword = errors.New("invalid password")
)

// Controller orchestrates sessions. It is shared across sessions; all per-user
// state lives on the session object passed into each method.
type Controller struct {
	completer    *llm.Completer
	store        *history.Store
	index        *registry.Registry
	systemPrompt string
	password     string
}

// New creates a controller. index may be nil, in which case session activity is
// not recorded. An empty password disables the authentication gate.
func New(completer *llm.Completer, store *history.Store, index *registry.Registry, systemPrompt, password string) *Controller {
	return &Controller{
		completer:    completer,
		store:        store,
		index:        index,
		systemPrompt: systemPrompt,
		password:     password,
	}
}

// InitialState is the auth state for freshly created sessions: Active when no
// password is configured, Unauthenticated otherwise.
func (c *Controller) InitialState() string {
	if c.password == "" {
		return StateActive
	}
	return StateUnauthenticated
}

// Authenticate moves a gated session to Active on an exact credential match.
// Once Active, a session stays Active for its lifetime; there is no logout.
// A mismatch returns ErrBadPassword and leaves the state unchanged. No lockout,
// no attempt counter.
func (c *Controller) Authenticate(s *session.Session, credential string) error {
	if c.password == "" {
		s.State = StateActive
		return nil
	}

	fsm := stateless.NewStateMachine(FSMState(s.State))
	fsm.Configure(FSMState(StateUnauthenticated)).
		Permit(TriggerCredentialAccepted, FSMState(StateActive)).
		PermitReentry(TriggerCredentialRejected)
	fsm.Configure(FSMState(StateActive)).
		PermitReentry(TriggerCredentialAccepted)

	trigger := TriggerCredentialRejected
	if credential == c.password {
		trigger = TriggerCredentialAccepted
	}
	if err := fsm.Fire(trigger); err != nil {
		logger.L.Warn("auth FSM fire error", "error", err)
	}
	s.State = fsm.MustState().(string)

	if trigger == TriggerCredentialRejected {
		return ErrBadPassword
	}
	return nil
}

// Send runs one chat turn. Whitespace-only input is ignored entirely. On a
// completion fault the user's message stays in the in-memory transcript but
// nothing is persisted for this turn; the fault is returned as the error. On
// success the assistant reply is appended, the transcript persisted, and the
// reply text returned.
func (c *Controller) Send(ctx context.Context, s *session.Session, input string) (string, error) {
	if c.password != "" && s.State != StateActive {
		return "", ErrNotAuthenticated
	}
	if strings.TrimSpace(input) == "" {
		return "", nil
	}

	s.Transcript = append(s.Transcript, history.Message{Role: history.RoleUser, Content: input})

	// Per-turn FSM context.
	type fsmContext struct {
		reply string
		fault *llm.Fault
	}
	fsmCtx := &fsmContext{}

	fsm := stateless.NewStateMachine(StateReadyToCallModel)

	// State: ReadyToCallModel
	// Action: send system prompt + full transcript to the endpoint.
	fsm.Configure(StateReadyToCallModel).
		PermitReentry(TriggerTurnSubmitted). // ensures OnEntry runs on the initial Fire
		OnEntry(func(ctx context.Context, _ ...any) error {
			outbound := make([]history.Message, 0, len(s.Transcript)+1)
			outbound = append(outbound, history.Message{Role: history.RoleSystem, Content: c.systemPrompt})
			outbound = append(outbound, s.Transcript...)

			reply, fault := c.completer.Complete(ctx, outbound)
			if fault != nil {
				fsmCtx.fault = fault
				return fsm.FireCtx(ctx, TriggerModelFailed)
			}
			fsmCtx.reply = reply
			return fsm.FireCtx(ctx, TriggerModelReplied)
		}).
		Permit(TriggerModelReplied, StateRecordingReply).
		Permit(TriggerModelFailed, StateTurnFailed)

	// State: RecordingReply
	// Action: append the assistant message and persist the transcript.
	fsm.Configure(StateRecordingReply).
		OnEntry(func(ctx context.Context, _ ...any) error {
			s.Transcript = append(s.Transcript, history.Message{Role: history.RoleAssistant, Content: fsmCtx.reply})
			c.store.Save(s.ID, s.Transcript)
			if c.index != nil {
				c.index.Touch(s.ID, len(s.Transcript))
			}
			return fsm.FireCtx(ctx, TriggerReplyRecorded)
		}).
		Permit(TriggerReplyRecorded, StateTurnDone)

	if err := fsm.FireCtx(ctx, TriggerTurnSubmitted); err != nil {
		logger.L.Error("turn FSM fire failed", "error", err)
	}

	if fsmCtx.fault != nil {
		return "", fsmCtx.fault
	}
	return fsmCtx.reply, nil
}

// Reset empties the in-memory transcript and persists an empty transcript under
// the same session id. The id is not rotated and the file is not deleted.
func (c *Controller) Reset(s *session.Session) error {
	if c.password != "" && s.State != StateActive {
		return ErrNotAuthenticated
	}
	s.Transcript = []history.Message{}
	c.store.Clear(s.ID)
	if c.index != nil {
		c.index.Touch(s.ID, 0)
	}
	return nil
}
