package operations

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

func Test_ExecuteOperation(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("execution reverted: not enough LINK")

	tests := []struct {
		name       string
		give       int
		handlerErr error
		want       int
		wantErr    error
	}{
		{
			name: "success",
			give: 1,
			want: 2,
		},
		{
			name:       "handler error is returned unchanged",
			give:       1,
			handlerErr: errBoom,
			wantErr:    errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			op := NewOperation("plus1", semver.MustParse("1.0.0"), "adds one",
				func(b Bundle, deps any, input int) (int, error) {
					calls++
					if tt.handlerErr != nil {
						return 0, tt.handlerErr
					}

					return input + 1, nil
				},
			)

			reporter := NewMemoryReporter()
			bundle := NewBundle(t.Context(), logger.Test(t), reporter)

			report, err := ExecuteOperation(bundle, op, nil, tt.give)
			assert.Equal(t, 1, calls)

			reports, rerr := reporter.GetReports()
			require.NoError(t, rerr)
			require.Len(t, reports, 1)
			assert.Equal(t, report.ID, reports[0].ID)
			assert.Equal(t, op.Def(), report.Def)
			assert.Equal(t, tt.give, report.Input)
			assert.NotNil(t, report.Timestamp)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.NotNil(t, report.Err)
				assert.Equal(t, tt.wantErr.Error(), report.Err.Message)

				return
			}

			require.NoError(t, err)
			assert.Nil(t, report.Err)
			assert.Equal(t, tt.want, report.Output)
		})
	}
}

func Test_ExecuteOperation_RunsEveryTime(t *testing.T) {
	t.Parallel()

	calls := 0
	op := NewOperation("count", semver.MustParse("1.0.0"), "counts runs",
		func(b Bundle, deps any, input int) (int, error) {
			calls++

			return calls, nil
		},
	)

	reporter := NewMemoryReporter()
	bundle := NewBundle(t.Context(), logger.Nop(), reporter)

	first, err := ExecuteOperation(bundle, op, nil, 1)
	require.NoError(t, err)
	second, err := ExecuteOperation(bundle, op, nil, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.NotEqual(t, first.ID, second.ID)

	reports, err := reporter.GetReports()
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func Test_ExecuteOperation_NotSerializable(t *testing.T) {
	t.Parallel()

	bundle := NewBundle(t.Context(), logger.Nop(), NewMemoryReporter())

	inputOp := NewOperation("chan-input", semver.MustParse("1.0.0"), "takes a channel",
		func(b Bundle, deps any, input chan int) (int, error) {
			return 1, nil
		},
	)
	_, err := ExecuteOperation(bundle, inputOp, nil, make(chan int))
	require.ErrorIs(t, err, ErrNotSerializable)

	outputOp := NewOperation("chan-output", semver.MustParse("1.0.0"), "returns a channel",
		func(b Bundle, deps any, input int) (chan int, error) {
			return make(chan int), nil
		},
	)
	_, err = ExecuteOperation(bundle, outputOp, nil, 1)
	require.ErrorIs(t, err, ErrNotSerializable)
}

func Test_Operation_Accessors(t *testing.T) {
	t.Parallel()

	op := NewOperation("deploy", semver.MustParse("1.2.0"), "deploys",
		func(b Bundle, deps any, input int) (int, error) { return input, nil },
	)

	assert.Equal(t, "deploy", op.ID())
	assert.Equal(t, "1.2.0", op.Version())
	assert.Equal(t, "deploys", op.Description())
}
