package tableau

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences reloads, batch mode switches and screenshots across
// frames for automated visual testing. Attach to a Stage via SetTestRunner.
//
// Actions:
//
//	{"action": "screenshot", "label": "initial"}
//	{"action": "reload"}
//	{"action": "batch", "mode": "immediate"}
//	{"action": "wait", "frames": 3}
//	{"action": "quit"}
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	quit      bool
	failures  int
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Stage via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("tableau: parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("tableau: parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "screenshot", "reload", "wait", "quit":
		case "batch":
			if _, err := parseBatchMode(st.Mode); err != nil {
				return nil, fmt.Errorf("tableau: parse test script: step %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("tableau: parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the stage. The runner's step method
// is called at the start of every Stage.Update.
func (s *Stage) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Failures returns the number of reload steps that failed.
func (r *TestRunner) Failures() int {
	return r.failures
}

// step advances the test runner by one frame. It returns ebiten.Termination
// once a quit step has run.
func (r *TestRunner) step(s *Stage) error {
	if r.quit {
		return ebiten.Termination
	}
	if r.done {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "reload":
		if err := s.Reload(context.Background()); err != nil {
			r.failures++
		}
	case "batch":
		s.BatchMode, _ = parseBatchMode(st.Mode)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "quit":
		// Let the frame that queued a screenshot draw before terminating.
		r.quit = true
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
	return nil
}
