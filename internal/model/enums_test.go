package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityCritical, 0},
		{PriorityHigh, 1},
		{PriorityMedium, 2},
		{PriorityLow, 3},
		{Priority("urgent"), -1},
		{Priority(""), -1},
	}
	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.Rank())
			assert.Equal(t, tt.want >= 0, tt.priority.Valid())
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.Valid(), "status %q", s)
	}
	assert.False(t, Status("done").Valid())
	assert.False(t, Status("").Valid())
	assert.Equal(t, StatusPending, DefaultStatus)
}

func TestEffortValid(t *testing.T) {
	for _, e := range AllEfforts() {
		assert.True(t, e.Valid(), "effort %q", e)
	}
	assert.False(t, Effort("huge").Valid())
	assert.False(t, Effort("").Valid())
}

func TestExampleIsEmpty(t *testing.T) {
	var nilExample *Example
	assert.True(t, nilExample.IsEmpty())
	assert.True(t, (&Example{}).IsEmpty())
	assert.False(t, (&Example{BeforeExample: "<title>Home</title>"}).IsEmpty())
	assert.False(t, (&Example{AfterExample: "<title>Acme Widgets</title>"}).IsEmpty())
}
