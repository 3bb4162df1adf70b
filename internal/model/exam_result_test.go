package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveResultSummary_NoAttempts(t *testing.T) {
	summary := DeriveResultSummary(nil)

	assert.Equal(t, ResultStatusInProgress, summary.Status)
	assert.Equal(t, 0, summary.BestScore)
}

func TestDeriveResultSummary_BestScoreIsMonotonic(t *testing.T) {
	attempts := []Attempt{
		{Score: 40, Passed: false},
		{Score: 70, Passed: true},
		{Score: 50, Passed: false},
	}

	summary := DeriveResultSummary(attempts)

	assert.Equal(t, 70, summary.BestScore, "a weaker retake must not lower the best score")
	assert.Equal(t, ResultStatusPassed, summary.Status, "a failing retake must not downgrade a pass")
}

func TestDeriveResultSummary_AllFailed(t *testing.T) {
	attempts := []Attempt{
		{Score: 10, Passed: false},
		{Score: 25, Passed: false},
	}

	summary := DeriveResultSummary(attempts)

	assert.Equal(t, 25, summary.BestScore)
	assert.Equal(t, ResultStatusFailed, summary.Status)
}
