package agent

import (
	"time"
)

// StepRecord describes one iteration of the agent loop.
type StepRecord struct {
	Number    int
	ToolName  string
	Arguments map[string]interface{}
	Result    string
	Error     string
	Duration  time.Duration
}

// Failed reports whether the step ended in an error.
func (s StepRecord) Failed() bool {
	return s.Error != ""
}

func (a *DefaultAgent) recordStep(rec StepRecord) {
	a.historyMu.Lock()
	a.history = append(a.history, rec)
	a.historyMu.Unlock()
}

func (a *DefaultAgent) setFinalResult(result string) {
	a.historyMu.Lock()
	a.finalResult = result
	a.historyMu.Unlock()
}

// History returns a copy of the steps recorded so far.
func (a *DefaultAgent) History() []StepRecord {
	a.historyMu.Lock()
	defer a.historyMu.Unlock()

	out := make([]StepRecord, len(a.history))
	copy(out, a.history)
	return out
}

// FinalResult returns the result of the last loop-breaking tool, or "".
func (a *DefaultAgent) FinalResult() string {
	a.historyMu.Lock()
	defer a.historyMu.Unlock()
	return a.finalResult
}
