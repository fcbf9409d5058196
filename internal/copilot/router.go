package copilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonathan/career-agent/internal/diagnostic"
	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/patch"
	"github.com/jonathan/career-agent/internal/prompts"
	"github.com/jonathan/career-agent/internal/session"
	"github.com/jonathan/career-agent/internal/types"
)

// Fixed replies of the confirmation dialogue.
const (
	AppliedReply   = "已应用修改。"
	CancelledReply = "已取消修改。"
)

const (
	// DefaultTemperature for copilot chat.
	DefaultTemperature = 0.7
	// DefaultHistoryLimit caps the turns sent to the model.
	DefaultHistoryLimit = 20
)

// ErrTurnInProgress is returned when a session already has a turn running.
var ErrTurnInProgress = errors.New("a message for this session is already being processed")

// Reply is the outcome of one copilot turn.
type Reply struct {
	Message string          `json:"reply"`
	Pending *patch.Proposal `json:"pending,omitempty"`
	// Applied is set when the turn committed an edit; Document is then the new resume.
	Applied  bool   `json:"applied"`
	Document string `json:"document,omitempty"`
	// NeedsConfirmation is set when a manual apply could not place the block.
	NeedsConfirmation bool `json:"needsConfirmation,omitempty"`
}

// Options configures a Router.
type Options struct {
	Temperature  float64
	HistoryLimit int
}

// Router runs copilot turns against sessions held in a Store. Turns for the
// same session are serialized; a second concurrent turn is rejected.
type Router struct {
	store        session.Store
	client       llm.Client
	logger       *slog.Logger
	temperature  float64
	historyLimit int

	mu    sync.Mutex
	turns map[string]*semaphore.Weighted
}

// NewRouter creates a copilot router.
func NewRouter(store session.Store, client llm.Client, logger *slog.Logger, opts Options) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Router{
		store:        store,
		client:       client,
		logger:       logger.With("component", "copilot"),
		temperature:  opts.Temperature,
		historyLimit: opts.HistoryLimit,
		turns:        make(map[string]*semaphore.Weighted),
	}
}

// acquire claims the session's turn slot. The returned func releases it and
// drops the slot, so the map only holds sessions with a turn in flight.
func (r *Router) acquire(sessionID string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sem, ok := r.turns[sessionID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		r.turns[sessionID] = sem
	}
	if !sem.TryAcquire(1) {
		return nil, ErrTurnInProgress
	}
	return func() {
		r.mu.Lock()
		sem.Release(1)
		delete(r.turns, sessionID)
		r.mu.Unlock()
	}, nil
}

// HandleMessage runs one user turn. With a proposal pending, a confirm or
// cancel reply settles it without calling the model; any other message goes
// to the model and the pending proposal survives unless the answer stages a
// new one. Upstream failures are recorded as an assistant turn and returned.
func (r *Router) HandleMessage(ctx context.Context, sessionID, text string) (*Reply, error) {
	if err := types.Validate(&types.ChatRequest{Message: text}); err != nil {
		return nil, err
	}
	release, err := r.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.AppendCopilot(types.RoleUser, text)

	if state.Pending != nil {
		if reply, settled := r.settle(state, DetectIntent(text)); settled {
			state.AppendCopilot(types.RoleAssistant, reply.Message)
			if err := r.store.Save(ctx, state); err != nil {
				return nil, err
			}
			return reply, nil
		}
	}

	resp, err := r.complete(ctx, state)
	if err != nil {
		r.logger.Error("copilot completion failed", "session", sessionID, "error", err)
		failure := fmt.Sprintf("抱歉，遇到错误: %s。请稍后再试。", err)
		if _, saveErr := r.record(ctx, sessionID, text, failure, nil); saveErr != nil {
			r.logger.Error("failed to save session", "session", sessionID, "error", saveErr)
		}
		return nil, err
	}

	out := patch.Interpret(patch.Input{Content: resp.Content, ToolCalls: resp.ToolCalls})
	if out.Proposal != nil {
		r.logger.Info("staged resume edit", "session", sessionID, "kind", out.Proposal.Kind, "section", out.Proposal.Section, "ambiguous", out.Ambiguous)
	}
	saved, err := r.record(ctx, sessionID, text, out.Reply, out.Proposal)
	if err != nil {
		return nil, err
	}
	return &Reply{Message: out.Reply, Pending: saved.Pending}, nil
}

// record appends a finished turn to the stored session. The session is read
// again because other writers may have saved it while the model was answering;
// only the turn and its proposal are applied on top.
func (r *Router) record(ctx context.Context, sessionID, question, answer string, proposal *patch.Proposal) (*session.State, error) {
	state, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.AppendCopilot(types.RoleUser, question)
	if proposal != nil {
		state.SetPending(*proposal)
	}
	state.AppendCopilot(types.RoleAssistant, answer)
	if err := r.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// settle confirms or cancels the pending proposal. It reports false for a
// message with neither intent.
func (r *Router) settle(state *session.State, intent Intent) (*Reply, bool) {
	switch intent {
	case IntentCancel:
		state.ClearPending()
		return &Reply{Message: CancelledReply}, true
	case IntentConfirm:
		doc, err := patch.Commit(*state.Pending, state.Document())
		if err != nil {
			// The document is untouched; the unusable proposal is dropped.
			r.logger.Warn("pending proposal could not be applied", "session", state.ID, "error", err)
			state.ClearPending()
			return &Reply{Message: fmt.Sprintf("修改应用失败：%v", err)}, true
		}
		state.ApplyDocument(doc)
		return &Reply{Message: AppliedReply, Applied: true, Document: doc}, true
	default:
		return nil, false
	}
}

type chatContext struct {
	ResumeText     string             `json:"resumeText"`
	RefinedContent string             `json:"refinedContent"`
	Diagnostic     *diagnostic.Result `json:"diagnosticResult"`
	Strategy       session.Strategy   `json:"strategyData"`
}

func (r *Router) complete(ctx context.Context, state *session.State) (*llm.Response, error) {
	chatCtx, err := json.MarshalIndent(chatContext{
		ResumeText:     state.ResumeText,
		RefinedContent: state.RefinedContent,
		Diagnostic:     state.Diagnostic,
		Strategy:       state.Strategy,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode chat context: %w", err)
	}
	system, err := prompts.Build(prompts.CopilotSystem, map[string]string{"Context": string(chatCtx)})
	if err != nil {
		return nil, fmt.Errorf("build copilot prompt: %w", err)
	}

	history := state.CopilotMessages.Last(r.historyLimit)
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, t := range history {
		messages = append(messages, llm.Message{Role: llm.Role(t.Role), Content: t.Content})
	}

	start := time.Now()
	resp, err := r.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: r.temperature,
		Tools:       llm.ResumeTools(),
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("copilot completion", "session", state.ID, "tool_calls", len(resp.ToolCalls), "latency", time.Since(start))
	return resp, nil
}

// ApplyCodeBlock commits a block the user picked from a copilot reply. A
// block that cannot be placed is not an error: the reply asks the user to
// confirm a whole-document replacement and the call can be repeated with
// allowRewrite.
func (r *Router) ApplyCodeBlock(ctx context.Context, sessionID, block string, allowRewrite bool) (*Reply, error) {
	if err := types.Validate(&types.ApplyBlockRequest{Block: block, AllowRewrite: allowRewrite}); err != nil {
		return nil, err
	}
	release, err := r.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	p, err := patch.FromBlock(block, state.Pending, allowRewrite)
	var ambiguous *patch.AmbiguousPatchError
	if errors.As(err, &ambiguous) {
		return &Reply{Message: ambiguous.Question(), NeedsConfirmation: true}, nil
	}
	if err != nil {
		return nil, &types.ValidationError{Field: "block", Message: err.Error()}
	}

	doc, err := patch.Commit(p, state.Document())
	if err != nil {
		return nil, &types.ValidationError{Field: "block", Message: err.Error()}
	}
	state.ApplyDocument(doc)
	if err := r.store.Save(ctx, state); err != nil {
		return nil, err
	}
	r.logger.Info("applied code block", "session", sessionID, "kind", p.Kind, "section", p.Section)
	return &Reply{Message: AppliedReply, Applied: true, Document: doc}, nil
}
