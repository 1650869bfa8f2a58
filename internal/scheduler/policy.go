// Package scheduler partitions unclassified records across a bounded pool
// of concurrent workers, drives retries, and drains outcomes into the
// progress store. It also owns the resume reconciliation that decides what
// is left to classify.
package scheduler

import "fmt"

// Policy is the operator's choice when prior progress exists. The decision
// is an explicit parameter rather than an interactive read loop, so the
// pipeline is a pure function of (policy, records, snapshot); any prompt
// lives at the CLI boundary.
type Policy string

// Resume policies.
const (
	// PolicyContinue dispatches only the unclassified remainder.
	PolicyContinue Policy = "continue"
	// PolicyReportOnly skips dispatch and exports what is already classified.
	PolicyReportOnly Policy = "report"
	// PolicyRestart discards the existing snapshot, including failed
	// entries, and reschedules everything.
	PolicyRestart Policy = "restart"
)

// ParsePolicy converts operator input into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyContinue, PolicyReportOnly, PolicyRestart:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown resume policy %q (want continue, report or restart)", s)
}
