// Package client implements the run streaming engine: it sends run requests,
// consumes the incrementally delivered event stream, and keeps a consistent
// local view of the conversation while a run is in flight. One run may be in
// flight per Client; a second Send while streaming is rejected outright.
package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/agentbridge/auth"
	"github.com/hupe1980/agentbridge/conversation"
	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/evaluation"
	"github.com/hupe1980/agentbridge/hook"
	"github.com/hupe1980/agentbridge/knowledge"
	"github.com/hupe1980/agentbridge/logging"
	"github.com/hupe1980/agentbridge/memory"
	"github.com/hupe1980/agentbridge/metrics"
	"github.com/hupe1980/agentbridge/processor"
	"github.com/hupe1980/agentbridge/session"
	"github.com/hupe1980/agentbridge/transport"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Mode selects agent or team operation. Defaults to agent mode.
	Mode core.Mode
	// AgentID targets an agent (required in agent mode).
	AgentID string
	// TeamID targets a team (required in team mode).
	TeamID string
	// UserID is attached to run requests when set.
	UserID string
	// TokenSource supplies bearer credentials and the refresh callback for
	// the expired-credential retry.
	TokenSource auth.TokenSource
	// HTTPClient overrides the default transport client.
	HTTPClient *http.Client
	// Logger receives engine diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// Processor applies content-bearing events to the in-progress entry.
	// Defaults to processor.Accretion.
	Processor core.EntryProcessor
	// Convert turns authoritative run records into conversation entries
	// during reconciliation. Defaults to RunRecordsToMessages.
	Convert func(records []core.RunRecord) []core.ChatMessage
	// RequestsPerSecond throttles outbound requests. 0 means unlimited.
	RequestsPerSecond float64
	// ReadBufferSize sets the transport read chunk size.
	ReadBufferSize int
	// Headers are attached to every request.
	Headers map[string]string
	// CancelNotifyTimeout bounds the best-effort remote cancel notification.
	CancelNotifyTimeout time.Duration
}

// Client drives streamed runs against a remote agent service. Control calls
// (Send, Continue, Cancel) and accessors are safe for concurrent use; at most
// one run is in flight at a time.
type Client struct {
	mode        core.Mode
	agentID     string
	teamID      string
	userID      string
	caller      *transport.Caller
	hooks       *hook.Registry
	store       *conversation.Store
	processor   core.EntryProcessor
	convert     func(records []core.RunRecord) []core.ChatMessage
	logger      *logging.RunLogger
	readBufSize int
	notifyWait  time.Duration

	sessionAPI   *session.Manager
	memoryAPI    *memory.Manager
	knowledgeAPI *knowledge.Manager
	metricsAPI   *metrics.Manager
	evalAPI      *evaluation.Manager

	mu          sync.Mutex
	status      core.RunStatus
	runID       string
	sessionID   string
	sessionNew  bool
	completed   bool
	pausedTools []core.ToolCall
	abort       context.CancelFunc
	sessions    []core.SessionSummary
}

// New constructs a Client for the service at endpoint with optional overrides.
func New(endpoint string, optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Mode:                core.ModeAgent,
		Logger:              logging.NoOpLogger{},
		Processor:           processor.Accretion{},
		ReadBufferSize:      4096,
		CancelNotifyTimeout: 5 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if _, err := url.Parse(endpoint); err != nil || endpoint == "" {
		return nil, errors.New("client: endpoint is required")
	}
	switch opts.Mode {
	case core.ModeAgent:
		if opts.AgentID == "" {
			return nil, errors.New("client: agent mode requires AgentID")
		}
	case core.ModeTeam:
		if opts.TeamID == "" {
			return nil, errors.New("client: team mode requires TeamID")
		}
	default:
		return nil, errors.New("client: unknown mode")
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	caller := transport.New(endpoint, func(o *transport.Options) {
		o.Tokens = opts.TokenSource
		o.Limiter = limiter
		o.Logger = opts.Logger
		o.Headers = opts.Headers
		if opts.HTTPClient != nil {
			o.HTTPClient = opts.HTTPClient
		}
	})

	convert := opts.Convert
	if convert == nil {
		convert = RunRecordsToMessages
	}

	return &Client{
		mode:         opts.Mode,
		agentID:      opts.AgentID,
		teamID:       opts.TeamID,
		userID:       opts.UserID,
		caller:       caller,
		hooks:        hook.NewRegistry(opts.Logger),
		store:        conversation.NewStore(),
		processor:    opts.Processor,
		convert:      convert,
		logger:       logging.NewRunLogger(opts.Logger).WithComponent("client"),
		readBufSize:  opts.ReadBufferSize,
		notifyWait:   opts.CancelNotifyTimeout,
		sessionAPI:   session.NewManager(caller),
		memoryAPI:    memory.NewManager(caller),
		knowledgeAPI: knowledge.NewManager(caller),
		metricsAPI:   metrics.NewManager(caller),
		evalAPI:      evaluation.NewManager(caller),
		status:       core.StatusIdle,
	}, nil
}

// On subscribes a listener to one notification type.
func (c *Client) On(t hook.Type, fn hook.Func) { c.hooks.On(t, fn) }

// OnAny subscribes a listener to every notification.
func (c *Client) OnAny(fn hook.Func) { c.hooks.OnAny(fn) }

// Status returns the current run lifecycle state.
func (c *Client) Status() core.RunStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// RunID returns the id of the in-flight run, if any.
func (c *Client) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

// SessionID returns the active session id.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Messages returns a copy of the conversation transcript.
func (c *Client) Messages() []core.ChatMessage { return c.store.Messages() }

// PausedTools returns the tool calls awaiting external action while paused.
func (c *Client) PausedTools() []core.ToolCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.ToolCall, len(c.pausedTools))
	for i, tc := range c.pausedTools {
		out[i] = tc.Clone()
	}
	return out
}

// KnownSessions returns the sessions this client has registered.
func (c *Client) KnownSessions() []core.SessionSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.SessionSummary(nil), c.sessions...)
}

// AnnotateToolCall attaches a client-only annotation to a tool call. When the
// tool call has not arrived yet the annotation is parked and applied as soon
// as it does. Annotations survive transcript reconciliation.
func (c *Client) AnnotateToolCall(toolCallID string, ann core.UIAnnotation) {
	if c.store.Annotate(toolCallID, ann) {
		c.emitConversation()
	}
}

// LoadSession replaces the local transcript with the authoritative one of an
// existing session. Requires no run in flight.
func (c *Client) LoadSession(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	if c.status != core.StatusIdle {
		c.mu.Unlock()
		return core.ErrRunInProgress
	}
	c.sessionID = sessionID
	c.mu.Unlock()

	records, err := c.sessionAPI.Runs(ctx, sessionID)
	if err != nil {
		return err
	}
	c.store.ReplaceAll(c.convert(records))
	c.emitConversation()
	return nil
}

// ClearConversation drops the transcript, pending annotations and the active
// session binding. Requires no run in flight.
func (c *Client) ClearConversation() error {
	c.mu.Lock()
	if c.status != core.StatusIdle {
		c.mu.Unlock()
		return core.ErrRunInProgress
	}
	c.sessionID = ""
	c.mu.Unlock()

	c.store.Clear()
	c.emitConversation()
	return nil
}

// Sessions exposes the session resource manager.
func (c *Client) Sessions() *session.Manager { return c.sessionAPI }

// Memory exposes the user-memory resource manager.
func (c *Client) Memory() *memory.Manager { return c.memoryAPI }

// Knowledge exposes the knowledge resource manager.
func (c *Client) Knowledge() *knowledge.Manager { return c.knowledgeAPI }

// Metrics exposes the usage-metrics resource manager.
func (c *Client) Metrics() *metrics.Manager { return c.metricsAPI }

// Evals exposes the evaluation resource manager.
func (c *Client) Evals() *evaluation.Manager { return c.evalAPI }

// runBasePath returns the run endpoint prefix for the configured target.
func (c *Client) runBasePath() string {
	if c.mode == core.ModeTeam {
		return "/teams/" + url.PathEscape(c.teamID) + "/runs"
	}
	return "/agents/" + url.PathEscape(c.agentID) + "/runs"
}

func (c *Client) emitConversation() {
	p := hook.Payload{Type: hook.TypeConversationUpdated}
	if last, ok := c.store.Last(); ok {
		p.Message = &last
	}
	c.hooks.Emit(p)
}
