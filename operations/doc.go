/*
Package operations wraps a single on-chain side effect in a versioned, reported unit of work.

An Operation pairs a Definition (id, semver version, description) with a handler. Executing it
through ExecuteOperation logs the run, calls the handler exactly once and records a Report with a
unique id, the input, the output and any error into a Reporter.

Operations are never retried and previous reports are never replayed: a deployment that failed or
succeeded is reported, and deciding whether to run it again is left to the operator.

# Basic Usage

	op := operations.NewOperation(
		"deploy-gas-agency",
		semver.MustParse("1.0.0"),
		"Deploys the GasAgency contract",
		func(b operations.Bundle, deps Deps, in Input) (Output, error) {
			return deps.Toolchain.SubmitDeployment(b.GetContext(), in.Request)
		},
	)

	bundle := operations.NewBundle(ctx, lggr, operations.NewMemoryReporter())
	report, err := operations.ExecuteOperation(bundle, op, deps, input)
*/
package operations
