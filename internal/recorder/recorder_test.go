package recorder

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mvoss9000/agentlens/api/schemas"
	"github.com/mvoss9000/agentlens/internal/config"
)

func newTestRecorder(t *testing.T, savePlans bool) *Recorder {
	t.Helper()
	rec, err := New(config.RecorderConfig{
		BaseDir:   t.TempDir(),
		SavePlans: savePlans,
		FullPage:  true,
	}, zap.NewNop())
	require.NoError(t, err)
	return rec
}

func stateWithScreenshot(payload string) *schemas.BrowserState {
	return &schemas.BrowserState{
		URL:        "https://example.com/",
		Title:      "Example",
		Screenshot: base64.StdEncoding.EncodeToString([]byte(payload)),
	}
}

func testOutput(goal string) *schemas.AgentOutput {
	return &schemas.AgentOutput{
		CurrentState: &schemas.AgentBrain{NextGoal: goal},
		Actions:      []schemas.Action{{Name: "navigate"}},
	}
}

func stepDirs(t *testing.T, baseDir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(baseDir, "execute_*"))
	require.NoError(t, err)
	return matches
}

func TestNewCreatesBaseDir(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "nested", "artifacts")
	rec, err := New(config.RecorderConfig{BaseDir: baseDir, SavePlans: true}, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(baseDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NotEmpty(t, rec.RunID())
}

func TestHandleStepOffByOneCompensation(t *testing.T) {
	rec := newTestRecorder(t, true)

	// The host reports its counter after incrementing: step 1 means the
	// artifacts belong to step 0.
	rec.HandleStep(stateWithScreenshot("png"), testOutput("open the page"), 1)

	assert.Equal(t, 0, rec.CurrentStepNumber())

	dir := rec.stepDir(0)
	assert.FileExists(t, filepath.Join(dir, "screenshot_0.png"))
	assert.FileExists(t, filepath.Join(dir, "plan.json"))

	data, err := os.ReadFile(filepath.Join(dir, "plan.json"))
	require.NoError(t, err)
	var plan PlanRecord
	require.NoError(t, json.Unmarshal(data, &plan))
	assert.Equal(t, 0, plan.StepNumber)
}

func TestSaveScreenshotMissingNeverFails(t *testing.T) {
	rec := newTestRecorder(t, true)

	path := rec.SaveScreenshot(&schemas.BrowserState{URL: "https://example.com/"}, 0, 2)

	assert.Equal(t, filepath.Join(rec.stepDir(2), "screenshot_0.png"), path)
	assert.NoFileExists(t, path)

	// Nil state degrades the same way.
	assert.NotPanics(t, func() { rec.SaveScreenshot(nil, 0, 2) })
}

func TestSaveScreenshotDecodeFailure(t *testing.T) {
	rec := newTestRecorder(t, true)

	path := rec.SaveScreenshot(&schemas.BrowserState{Screenshot: "not-base64!!!"}, 0, 0)
	assert.NoFileExists(t, path)
}

func TestSaveScreenshotWritesDecodedBytes(t *testing.T) {
	rec := newTestRecorder(t, true)

	path := rec.SaveScreenshot(stateWithScreenshot("fake png bytes"), 1, 4)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), data)
	assert.Equal(t, "screenshot_1.png", filepath.Base(path))
}

func TestSavePlanDisabled(t *testing.T) {
	rec := newTestRecorder(t, false)

	assert.Empty(t, rec.SavePlan(testOutput("goal"), 0))
	assert.Empty(t, stepDirs(t, rec.baseDir))
}

func TestSaveResultsRoundTrip(t *testing.T) {
	rec := newTestRecorder(t, true)

	ok, failed := true, false
	results := []schemas.ActionResult{
		{
			ExtractedContent: strPtr("Nähere Infos → ✓ фрагмент"),
			Success:          &ok,
			IncludeInMemory:  true,
		},
		{
			Error:   strPtr("element not found"),
			Success: &failed,
			IsDone:  true,
		},
	}

	path := rec.SaveResults(results, 0)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// Non-ASCII text must survive verbatim, not as \u escapes.
	assert.True(t, strings.Contains(string(raw), "Nähere Infos → ✓ фрагмент"))

	var decoded []ResultEntry
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, len(results))

	want := []ResultEntry{
		{ExtractedContent: "Nähere Infos → ✓ фрагмент", Success: &ok, IncludeInMemory: true},
		{Error: strPtr("element not found"), Success: &failed, IsDone: true},
	}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveResultsDecodesFencedContent(t *testing.T) {
	rec := newTestRecorder(t, true)

	results := []schemas.ActionResult{
		{ExtractedContent: strPtr("```json\n{\"price\": \"9.99\"}\n```")},
	}
	path := rec.SaveResults(results, 0)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []ResultEntry
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)

	parsed, isMap := decoded[0].ExtractedContent.(map[string]interface{})
	require.True(t, isMap)
	assert.Equal(t, "9.99", parsed["price"])
}

func TestDirectoryNamingStableWithinStep(t *testing.T) {
	rec := newTestRecorder(t, true)

	// Force directory-name derivation across a second boundary; the
	// session stamp is fixed at construction, so both saves must land in
	// the same directory.
	base := rec.now()
	rec.now = func() time.Time { return base.Add(2 * time.Second) }

	first := rec.SaveScreenshot(stateWithScreenshot("a"), 0, 5)
	second := rec.SavePlan(testOutput("goal"), 5)
	third := rec.SaveResults(nil, 5)

	assert.Equal(t, filepath.Dir(first), filepath.Dir(second))
	assert.Equal(t, filepath.Dir(second), filepath.Dir(third))
	assert.Len(t, stepDirs(t, rec.baseDir), 1)
}

func TestSaveAllPlansNoop(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := newTestRecorder(t, false)
		rec.plans = []PlanRecord{{StepNumber: 0}}
		assert.Empty(t, rec.SaveAllPlans())
	})

	t.Run("empty ledger", func(t *testing.T) {
		rec := newTestRecorder(t, true)
		assert.Empty(t, rec.SaveAllPlans())

		dumps, err := filepath.Glob(filepath.Join(rec.baseDir, "all_plans_*.json"))
		require.NoError(t, err)
		assert.Empty(t, dumps)
	})
}

func TestSaveAllPlansNewFilePerCall(t *testing.T) {
	rec := newTestRecorder(t, true)
	rec.SavePlan(testOutput("goal"), 0)

	base := rec.now()
	rec.now = func() time.Time { return base.Add(1 * time.Second) }
	first := rec.SaveAllPlans()
	rec.now = func() time.Time { return base.Add(2 * time.Second) }
	second := rec.SaveAllPlans()

	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	dumps, err := filepath.Glob(filepath.Join(rec.baseDir, "all_plans_*.json"))
	require.NoError(t, err)
	assert.Len(t, dumps, 2)
}

func TestEndToEndRun(t *testing.T) {
	rec := newTestRecorder(t, true)

	for hostStep := 1; hostStep <= 3; hostStep++ {
		rec.HandleStep(stateWithScreenshot("png"), testOutput("goal"), hostStep)
		rec.SaveResults([]schemas.ActionResult{{}}, CurrentStep)
		rec.AdvanceStep()
	}
	rec.HandleDone(&schemas.AgentHistory{})

	dirs := stepDirs(t, rec.baseDir)
	require.Len(t, dirs, 3)
	for _, dir := range dirs {
		assert.FileExists(t, filepath.Join(dir, "plan.json"))
	}

	dumps, err := filepath.Glob(filepath.Join(rec.baseDir, "all_plans_*.json"))
	require.NoError(t, err)
	require.Len(t, dumps, 1)

	data, err := os.ReadFile(dumps[0])
	require.NoError(t, err)
	var plans []PlanRecord
	require.NoError(t, json.Unmarshal(data, &plans))
	require.Len(t, plans, 3)
	for i, plan := range plans {
		assert.Equal(t, i, plan.StepNumber)
	}
}
