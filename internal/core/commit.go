package core

import "fmt"

// CommitResult is the outcome of committing an import session.
// Partial failure is a normal result, not an error.
type CommitResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Ignored    int      `json:"ignored,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Message    string   `json:"message"`
	APIMessage string   `json:"api_message,omitempty"`
	Refresh    bool     `json:"refresh"`
}

func newCommitResult(res *BulkResult, plan CommitPlan) *CommitResult {
	if res == nil {
		res = &BulkResult{}
	}
	return &CommitResult{
		Successful: res.Successful,
		Failed:     res.Failed,
		Skipped:    plan.Skipped,
		Ignored:    plan.Ignored,
		Errors:     res.Errors,
		Message:    commitMessage(res.Successful, res.Failed),
		APIMessage: res.Message,
		Refresh:    res.Successful > 0,
	}
}

func commitMessage(successful, failed int) string {
	switch {
	case successful == 0 && failed == 0:
		return "No shows were imported"
	case failed == 0:
		return fmt.Sprintf("Successfully imported %d show(s)", successful)
	case successful == 0:
		return fmt.Sprintf("Import failed: %d show(s) failed", failed)
	default:
		return fmt.Sprintf("Successfully imported %d show(s), %d failed", successful, failed)
	}
}
