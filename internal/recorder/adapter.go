// File: internal/recorder/adapter.go
package recorder

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mvoss9000/agentlens/api/schemas"
	"github.com/mvoss9000/agentlens/internal/config"
)

var errNoSession = errors.New("host exposes no browser session")

// RecorderSink is an optional interface a host may implement to receive the
// attached Recorder for external inspection.
type RecorderSink interface {
	SetRecorder(rec *Recorder)
}

// NewCallbacks produces the two handlers a host invokes on its lifecycle
// events. The step callback forwards into HandleStep; the done callback
// forwards the completion payload into HandleDone. Neither ever returns an
// error: recording is best-effort and must not disturb the host.
func NewCallbacks(rec *Recorder) (schemas.StepCallback, schemas.DoneCallback) {
	stepCallback := func(_ context.Context, state *schemas.BrowserState, output *schemas.AgentOutput, stepNumber int) error {
		rec.HandleStep(state, output, stepNumber)
		return nil
	}
	doneCallback := func(_ context.Context, history *schemas.AgentHistory) error {
		rec.HandleDone(history)
		return nil
	}
	return stepCallback, doneCallback
}

// recordingExecutor wraps a host's ActionExecutor: it delegates to the
// original implementation, then performs the per-result screenshot sweep and
// result persistence. It holds the host's browser session because the sweep
// needs a fresh state and screenshot at call time.
type recordingExecutor struct {
	inner   schemas.ActionExecutor
	session schemas.BrowserSession
	rec     *Recorder
	log     *zap.Logger
}

var _ schemas.ActionExecutor = (*recordingExecutor)(nil)

// WrapExecutor builds the replacement for the host's batch-execution method.
// The wrapped executor preserves the original calling convention; any
// recording failure is logged and the original results are returned
// untouched.
func WrapExecutor(inner schemas.ActionExecutor, session schemas.BrowserSession, rec *Recorder, logger *zap.Logger) schemas.ActionExecutor {
	return &recordingExecutor{
		inner:   inner,
		session: session,
		rec:     rec,
		log:     logger.Named("adapter"),
	}
}

func (e *recordingExecutor) ExecuteActions(ctx context.Context, actions []schemas.Action) ([]schemas.ActionResult, error) {
	results, err := e.inner.ExecuteActions(ctx, actions)
	if err != nil {
		// The host's own failure path; nothing to record.
		return results, err
	}

	e.record(ctx, results)
	return results, nil
}

// record captures one screenshot per result, persists the batch, and then
// advances the shadow counter. Persistence must complete before the counter
// moves: later saves without an explicit step depend on its current value.
func (e *recordingExecutor) record(ctx context.Context, results []schemas.ActionResult) {
	for i := range results {
		state, err := e.fetchState(ctx)
		if err != nil {
			e.log.Error("Failed to capture post-action state", zap.Int("result_index", i), zap.Error(err))
			continue
		}
		e.rec.SaveScreenshot(state, i, CurrentStep)
	}

	e.rec.SaveResults(results, CurrentStep)
	e.rec.AdvanceStep()
}

// fetchState re-fetches the browser state with a fresh screenshot.
func (e *recordingExecutor) fetchState(ctx context.Context) (*schemas.BrowserState, error) {
	if e.session == nil {
		return nil, errNoSession
	}
	state, err := e.session.GetState(ctx)
	if err != nil {
		return nil, err
	}
	shot, err := e.session.CaptureScreenshot(ctx, e.rec.FullPage())
	if err != nil {
		// Keep the state; SaveScreenshot degrades to a warning.
		e.log.Warn("Screenshot capture failed", zap.Error(err))
	} else {
		state.Screenshot = shot
	}
	return state, nil
}

// Attach wires a Recorder into the host: constructs it, installs both
// callbacks, replaces the executor with its recording wrapper, and hands the
// Recorder to the host when it implements RecorderSink.
func Attach(host schemas.Host, cfg config.RecorderConfig, logger *zap.Logger) (*Recorder, error) {
	rec, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}

	stepCallback, doneCallback := NewCallbacks(rec)
	host.SetStepCallback(stepCallback)
	host.SetDoneCallback(doneCallback)
	host.SetExecutor(WrapExecutor(host.Executor(), host.Session(), rec, logger))

	if sink, ok := host.(RecorderSink); ok {
		sink.SetRecorder(rec)
	}

	logger.Info("Recorder attached to host", zap.String("base_dir", cfg.BaseDir))
	return rec, nil
}
