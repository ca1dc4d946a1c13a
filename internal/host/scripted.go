// File: internal/host/scripted.go
package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mvoss9000/agentlens/api/schemas"
	"github.com/mvoss9000/agentlens/internal/recorder"
)

// NavigatingSession is the browser capability the scripted host needs on top
// of the plain observer view.
type NavigatingSession interface {
	schemas.BrowserSession
	Navigate(ctx context.Context, targetURL string) error
}

// Scripted is a minimal Host that replays a fixed URL list through a browser
// session, one navigation per step. It exists to smoke-test observer plugins
// against the full lifecycle: per-step callbacks, executor interception, and
// the completion callback.
type Scripted struct {
	log      *zap.Logger
	session  NavigatingSession
	executor schemas.ActionExecutor
	stepCb   schemas.StepCallback
	doneCb   schemas.DoneCallback
	rec      *recorder.Recorder

	// steps counts decision cycles; incremented before the step callback
	// fires, matching the convention observers compensate for.
	steps int
}

var _ schemas.Host = (*Scripted)(nil)
var _ recorder.RecorderSink = (*Scripted)(nil)

// NewScripted creates a scripted host driving the given session.
func NewScripted(session NavigatingSession, logger *zap.Logger) *Scripted {
	return &Scripted{
		log:      logger.Named("host"),
		session:  session,
		executor: &navExecutor{session: session},
	}
}

// Session implements schemas.Host.
func (h *Scripted) Session() schemas.BrowserSession { return h.session }

// Executor implements schemas.Host.
func (h *Scripted) Executor() schemas.ActionExecutor { return h.executor }

// SetExecutor implements schemas.Host.
func (h *Scripted) SetExecutor(exec schemas.ActionExecutor) { h.executor = exec }

// SetStepCallback implements schemas.Host.
func (h *Scripted) SetStepCallback(cb schemas.StepCallback) { h.stepCb = cb }

// SetDoneCallback implements schemas.Host.
func (h *Scripted) SetDoneCallback(cb schemas.DoneCallback) { h.doneCb = cb }

// SetRecorder implements recorder.RecorderSink.
func (h *Scripted) SetRecorder(rec *recorder.Recorder) { h.rec = rec }

// Recorder returns the attached recorder, if any.
func (h *Scripted) Recorder() *recorder.Recorder { return h.rec }

// Run visits each URL as one decision step and fires the completion
// callback at the end.
func (h *Scripted) Run(ctx context.Context, urls []string) error {
	history := &schemas.AgentHistory{}

	for _, targetURL := range urls {
		h.steps++

		output := h.planStep(targetURL)

		state, err := h.session.GetState(ctx)
		if err != nil {
			h.log.Warn("Failed to snapshot state before step", zap.Int("step", h.steps), zap.Error(err))
		}
		if h.stepCb != nil {
			if err := h.stepCb(ctx, state, output, h.steps); err != nil {
				h.log.Warn("Step callback failed", zap.Int("step", h.steps), zap.Error(err))
			}
		}

		results, err := h.executor.ExecuteActions(ctx, output.Actions)
		if err != nil {
			return fmt.Errorf("step %d failed: %w", h.steps, err)
		}
		history.Entries = append(history.Entries, historyEntry(output, results))
	}

	if h.doneCb != nil {
		if err := h.doneCb(ctx, history); err != nil {
			h.log.Warn("Done callback failed", zap.Error(err))
		}
	}
	return nil
}

func (h *Scripted) planStep(targetURL string) *schemas.AgentOutput {
	params, _ := json.Marshal(map[string]string{"url": targetURL})
	return &schemas.AgentOutput{
		CurrentState: &schemas.AgentBrain{
			Memory:   fmt.Sprintf("visited %d of the scripted URLs", h.steps-1),
			NextGoal: "open " + targetURL,
		},
		Actions: []schemas.Action{{
			ID:     uuid.New().String(),
			Name:   "navigate",
			Params: params,
		}},
	}
}

func historyEntry(output *schemas.AgentOutput, results []schemas.ActionResult) json.RawMessage {
	entry, err := json.Marshal(struct {
		ModelOutput *schemas.AgentOutput   `json:"model_output"`
		Result      []schemas.ActionResult `json:"result"`
	}{output, results})
	if err != nil {
		return json.RawMessage("{}")
	}
	return entry
}

// navExecutor is the host's original batch executor: it understands only the
// navigate action.
type navExecutor struct {
	session NavigatingSession
}

func (e *navExecutor) ExecuteActions(ctx context.Context, actions []schemas.Action) ([]schemas.ActionResult, error) {
	results := make([]schemas.ActionResult, 0, len(actions))
	for _, action := range actions {
		results = append(results, e.execute(ctx, action))
	}
	return results, nil
}

func (e *navExecutor) execute(ctx context.Context, action schemas.Action) schemas.ActionResult {
	if action.Name != "navigate" {
		msg := fmt.Sprintf("unsupported action %q", action.Name)
		ok := false
		return schemas.ActionResult{Error: &msg, Success: &ok}
	}

	var params struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(action.Params, &params); err != nil || params.URL == "" {
		msg := "navigate action missing url parameter"
		ok := false
		return schemas.ActionResult{Error: &msg, Success: &ok}
	}

	if err := e.session.Navigate(ctx, params.URL); err != nil {
		msg := err.Error()
		ok := false
		return schemas.ActionResult{Error: &msg, Success: &ok}
	}

	content := "Navigated to " + params.URL
	ok := true
	return schemas.ActionResult{
		ExtractedContent: &content,
		Success:          &ok,
		IncludeInMemory:  true,
	}
}
