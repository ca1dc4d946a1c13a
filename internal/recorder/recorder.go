// File: internal/recorder/recorder.go
package recorder

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mvoss9000/agentlens/api/schemas"
	"github.com/mvoss9000/agentlens/internal/config"
)

// CurrentStep is the sentinel step argument meaning "use the recorder's
// shadow counter".
const CurrentStep = -1

const sessionStampLayout = "20060102_150405"

// Recorder persists per-step artifacts (screenshots, plans, action results)
// of one agent run under a base directory, and keeps an in-memory ledger of
// all plans for the end-of-run summary dump.
//
// The recorder is single-flow: it is driven from the host agent's step loop
// and performs no internal locking. A host that invokes callbacks
// concurrently must serialize them itself.
type Recorder struct {
	log       *zap.Logger
	baseDir   string
	savePlans bool
	fullPage  bool

	// runID tags logs and identifies this run session.
	runID string
	// sessionStamp is captured once at construction so every step of one
	// run lands under the same naming epoch, even when directory creation
	// calls straddle a second boundary.
	sessionStamp string

	// currentStep shadows the host's step counter, offset per HandleStep
	// and advanced by AdvanceStep after each executed batch.
	currentStep int
	plans       []PlanRecord

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Recorder rooted at cfg.BaseDir, creating the directory if
// absent.
func New(cfg config.RecorderConfig, logger *zap.Logger) (*Recorder, error) {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "screenshots"
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %q: %w", cfg.BaseDir, err)
	}

	runID := uuid.New().String()
	now := time.Now

	r := &Recorder{
		log:          logger.Named("recorder").With(zap.String("run_id", runID)),
		baseDir:      cfg.BaseDir,
		savePlans:    cfg.SavePlans,
		fullPage:     cfg.FullPage,
		runID:        runID,
		sessionStamp: now().Format(sessionStampLayout),
		now:          now,
	}
	r.log.Info("Recorder initialized",
		zap.String("base_dir", r.baseDir),
		zap.Bool("save_plans", r.savePlans),
		zap.Bool("full_page", r.fullPage))
	return r, nil
}

// RunID returns the identifier of this run session.
func (r *Recorder) RunID() string { return r.runID }

// CurrentStepNumber returns the shadow step counter's current value.
func (r *Recorder) CurrentStepNumber() int { return r.currentStep }

// FullPage reports whether screenshots should be full-page captures.
func (r *Recorder) FullPage() bool { return r.fullPage }

// resolveStep maps the CurrentStep sentinel to the shadow counter.
func (r *Recorder) resolveStep(step int) int {
	if step < 0 {
		return r.currentStep
	}
	return step
}

// stepDir returns the directory path for a step without creating it.
func (r *Recorder) stepDir(step int) string {
	return filepath.Join(r.baseDir, fmt.Sprintf("execute_%03d_%s", step, r.sessionStamp))
}

// ensureStepDir creates the step directory. Idempotent: repeated calls for
// the same step resolve to the same path.
func (r *Recorder) ensureStepDir(step int) (string, error) {
	dir := r.stepDir(step)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dir, fmt.Errorf("failed to create step directory %q: %w", dir, err)
	}
	return dir, nil
}

// SaveScreenshot decodes the state's base64 screenshot and writes it to
// screenshot_{resultIndex}.png under the step's directory. A state without a
// screenshot, a decode failure, or an I/O failure degrades to a warning; the
// intended path is returned either way and may not exist on disk.
func (r *Recorder) SaveScreenshot(state *schemas.BrowserState, resultIndex, step int) string {
	step = r.resolveStep(step)

	dir, err := r.ensureStepDir(step)
	if err != nil {
		r.log.Error("Failed to create step directory for screenshot", zap.Int("step", step), zap.Error(err))
	}
	path := filepath.Join(dir, fmt.Sprintf("screenshot_%d.png", resultIndex))

	if state == nil || state.Screenshot == "" {
		r.log.Warn("No screenshot available in browser state", zap.Int("step", step), zap.Int("result_index", resultIndex))
		return path
	}

	raw, err := base64.StdEncoding.DecodeString(state.Screenshot)
	if err != nil {
		r.log.Error("Failed to decode screenshot data", zap.Int("step", step), zap.Error(err))
		return path
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		r.log.Error("Failed to write screenshot", zap.String("path", path), zap.Error(err))
		return path
	}

	r.log.Info("Screenshot saved", zap.String("path", path))
	return path
}

// SavePlan appends a PlanRecord for the step to the ledger and writes it as
// plan.json in the step's directory. Returns an empty path when plan saving
// is disabled.
func (r *Recorder) SavePlan(output *schemas.AgentOutput, step int) string {
	if !r.savePlans {
		return ""
	}
	step = r.resolveStep(step)

	record := PlanRecord{
		StepNumber: step,
		Timestamp:  r.now().Format(time.RFC3339),
	}
	if output != nil {
		record.CurrentState = output.CurrentState
		record.Actions = output.Actions
	}
	r.plans = append(r.plans, record)

	dir, err := r.ensureStepDir(step)
	if err != nil {
		r.log.Error("Failed to create step directory for plan", zap.Int("step", step), zap.Error(err))
	}
	path := filepath.Join(dir, "plan.json")
	if err := r.writeJSON(path, record); err != nil {
		r.log.Error("Failed to write plan", zap.String("path", path), zap.Error(err))
		return path
	}

	r.log.Info("Plan saved", zap.String("path", path), zap.Int("step", step))
	return path
}

// SaveResults writes the batch of action results as results.json in the
// step's directory, recovering structured content from fenced JSON blocks
// where present.
func (r *Recorder) SaveResults(results []schemas.ActionResult, step int) string {
	step = r.resolveStep(step)

	entries := make([]ResultEntry, len(results))
	for i, res := range results {
		entries[i] = ResultEntry{
			ExtractedContent: decodeExtractedContent(res.ExtractedContent),
			Error:            res.Error,
			Success:          res.Success,
			IsDone:           res.IsDone,
			IncludeInMemory:  res.IncludeInMemory,
		}
	}

	dir, err := r.ensureStepDir(step)
	if err != nil {
		r.log.Error("Failed to create step directory for results", zap.Int("step", step), zap.Error(err))
	}
	path := filepath.Join(dir, "results.json")
	if err := r.writeJSON(path, entries); err != nil {
		r.log.Error("Failed to write results", zap.String("path", path), zap.Error(err))
		return path
	}

	r.log.Info("Results saved", zap.String("path", path), zap.Int("count", len(entries)))
	return path
}

// HandleStep records the initial screenshot and the plan for a decision
// step. The host reports its step counter after incrementing it, so the
// artifacts belong to stepNumber-1; the shadow counter is re-anchored to
// that value.
func (r *Recorder) HandleStep(state *schemas.BrowserState, output *schemas.AgentOutput, stepNumber int) {
	actualStep := stepNumber - 1
	r.currentStep = actualStep
	r.SaveScreenshot(state, 0, actualStep)
	r.SavePlan(output, actualStep)
}

// AdvanceStep moves the shadow counter past the step whose artifacts have
// just been persisted. Callers must finish saving before advancing: saves
// without an explicit step argument depend on the counter's current value.
func (r *Recorder) AdvanceStep() {
	r.currentStep++
}

// HandleDone flushes the plan ledger once the run completes.
func (r *Recorder) HandleDone(history *schemas.AgentHistory) {
	if history != nil {
		r.log.Debug("Run completed", zap.Int("history_entries", len(history.Entries)))
	}
	if r.savePlans && len(r.plans) > 0 {
		r.SaveAllPlans()
	}
}

// SaveAllPlans writes the full ledger as one JSON array to a timestamped
// summary file at the base directory root. A no-op (empty path) when plan
// saving is disabled or the ledger is empty; otherwise each call produces a
// new file.
func (r *Recorder) SaveAllPlans() string {
	if !r.savePlans || len(r.plans) == 0 {
		return ""
	}

	stamp := r.now().Format(sessionStampLayout)
	path := filepath.Join(r.baseDir, fmt.Sprintf("all_plans_%s.json", stamp))
	if err := r.writeJSON(path, r.plans); err != nil {
		r.log.Error("Failed to write plan summary", zap.String("path", path), zap.Error(err))
		return path
	}

	r.log.Info("All plans saved", zap.String("path", path), zap.Int("count", len(r.plans)))
	return path
}

// writeJSON marshals v with 2-space indentation and writes it to path.
func (r *Recorder) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
