package cleanup

import "fmt"

// Guardrail gate names, reported so the operator knows exactly which check
// refused the run.
const (
	GateTargetIdentity    = "target-identity"
	GateTableAllowList    = "table-allow-list"
	GatePatternConvention = "pattern-convention"
)

// GuardrailViolation reports a failed safety gate. The run is aborted with
// zero side effects past the failing point.
type GuardrailViolation struct {
	Gate   string
	Detail string
}

func (e *GuardrailViolation) Error() string {
	return fmt.Sprintf("guardrail %s: %s", e.Gate, e.Detail)
}
