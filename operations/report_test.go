package operations

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryReporter(t *testing.T) {
	t.Parallel()

	def := Definition{ID: "deploy", Version: semver.MustParse("1.0.0"), Description: "deploys"}
	reporter := NewMemoryReporter()

	ok := NewReport(def, 1, 2, nil)
	failed := NewReport(def, 1, 0, errors.New("boom"))

	require.NoError(t, reporter.AddReport(ok.ToGenericReport()))
	require.NoError(t, reporter.AddReport(failed.ToGenericReport()))

	got, err := reporter.GetReport(failed.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Err)
	assert.Equal(t, "boom", got.Err.Error())

	_, err = reporter.GetReport("missing")
	require.ErrorIs(t, err, ErrReportNotFound)

	reports, err := reporter.GetReports()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, ok.ID, reports[0].ID)

	reports[0].ID = "mutated"
	again, err := reporter.GetReports()
	require.NoError(t, err)
	assert.Equal(t, ok.ID, again[0].ID)
}
