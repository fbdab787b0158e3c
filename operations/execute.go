package operations

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

var ErrNotSerializable = errors.New("data cannot be safely recorded in a report, " +
	"avoid types that can't be serialized")

// ExecuteOperation runs the operation once with the given input and dependencies and records
// the report, successful or not, into the bundle's reporter.
//
// The handler error is returned unchanged, so callers can match it with errors.Is and errors.As.
//
// The input and output must be JSON serializable.
func ExecuteOperation[IN, OUT, DEP any](
	b Bundle,
	operation *Operation[IN, OUT, DEP],
	deps DEP,
	input IN,
) (Report[IN, OUT], error) {
	if !IsSerializable(b.Logger, input) {
		return Report[IN, OUT]{}, fmt.Errorf("operation %s input: %w", operation.def.ID, ErrNotSerializable)
	}

	output, err := operation.execute(b, deps, input)
	if err == nil && !IsSerializable(b.Logger, output) {
		return Report[IN, OUT]{}, fmt.Errorf("operation %s output: %w", operation.def.ID, ErrNotSerializable)
	}

	report := NewReport(operation.def, input, output, err)
	if rerr := b.reporter.AddReport(report.ToGenericReport()); rerr != nil {
		return Report[IN, OUT]{}, errors.Join(err, fmt.Errorf("failed to record report: %w", rerr))
	}

	if err != nil {
		b.Logger.Errorw("Operation failed", "id", operation.def.ID, "report", report.ID, "error", err)

		return report, err
	}

	return report, nil
}

// IsSerializable reports whether v can be marshalled to JSON.
func IsSerializable(lggr logger.Logger, v any) bool {
	if _, err := json.Marshal(v); err != nil {
		lggr.Errorw("Value is not serializable", "type", fmt.Sprintf("%T", v), "error", err)

		return false
	}

	return true
}
