// File: internal/recorder/report.go
package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// stepDirRegex matches the recorder's step directory naming scheme and
// captures the step number.
var stepDirRegex = regexp.MustCompile(`^execute_(\d{3,})_\d{8}_\d{6}$`)

// StepSummary describes the recorded artifacts of one step directory.
type StepSummary struct {
	Dir         string `json:"dir"`
	StepNumber  int    `json:"step_number"`
	Actions     int    `json:"actions"`
	Results     int    `json:"results"`
	Errors      int    `json:"errors"`
	Screenshots int    `json:"screenshots"`
	HasPlan     bool   `json:"has_plan"`
}

// RunSummary aggregates everything recorded under one base directory.
type RunSummary struct {
	BaseDir   string        `json:"base_dir"`
	Steps     []StepSummary `json:"steps"`
	PlanDumps []string      `json:"plan_dumps"`
}

// InspectRun reads a recorded base directory back and summarizes it. Step
// directories are decoded concurrently; a directory with unreadable
// artifacts still contributes its screenshot count.
func InspectRun(baseDir string) (*RunSummary, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read run directory %q: %w", baseDir, err)
	}

	summary := &RunSummary{BaseDir: baseDir}

	var mu sync.Mutex
	var g errgroup.Group

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() {
			if matched, _ := filepath.Match("all_plans_*.json", name); matched {
				summary.PlanDumps = append(summary.PlanDumps, name)
			}
			continue
		}

		m := stepDirRegex.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		step, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		dir := filepath.Join(baseDir, name)
		g.Go(func() error {
			ss, err := inspectStepDir(dir, step)
			if err != nil {
				return err
			}
			mu.Lock()
			summary.Steps = append(summary.Steps, ss)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summary.Steps, func(i, j int) bool {
		return summary.Steps[i].StepNumber < summary.Steps[j].StepNumber
	})
	sort.Strings(summary.PlanDumps)
	return summary, nil
}

func inspectStepDir(dir string, step int) (StepSummary, error) {
	ss := StepSummary{Dir: filepath.Base(dir), StepNumber: step}

	if data, err := os.ReadFile(filepath.Join(dir, "plan.json")); err == nil {
		var plan PlanRecord
		if err := json.Unmarshal(data, &plan); err != nil {
			return ss, fmt.Errorf("corrupt plan.json in %q: %w", dir, err)
		}
		ss.HasPlan = true
		ss.Actions = len(plan.Actions)
	}

	if data, err := os.ReadFile(filepath.Join(dir, "results.json")); err == nil {
		var results []ResultEntry
		if err := json.Unmarshal(data, &results); err != nil {
			return ss, fmt.Errorf("corrupt results.json in %q: %w", dir, err)
		}
		ss.Results = len(results)
		for _, res := range results {
			if res.Error != nil {
				ss.Errors++
			}
		}
	}

	shots, err := filepath.Glob(filepath.Join(dir, "screenshot_*.png"))
	if err == nil {
		ss.Screenshots = len(shots)
	}

	return ss, nil
}
