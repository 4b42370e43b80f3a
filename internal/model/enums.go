package model

// Priority is the severity of a recommendation.
type Priority string

// Priority values, most severe first.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// AllPriorities returns the priorities in severity order.
func AllPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank returns the sort position of p (critical = 0), or -1 if p is unknown.
func (p Priority) Rank() int {
	for i, known := range AllPriorities() {
		if p == known {
			return i
		}
	}
	return -1
}

// Effort is the rough cost of acting on a recommendation.
type Effort string

// Effort values.
const (
	EffortQuick       Effort = "quick"
	EffortModerate    Effort = "moderate"
	EffortSignificant Effort = "significant"
)

// AllEfforts returns the known effort values.
func AllEfforts() []Effort {
	return []Effort{EffortQuick, EffortModerate, EffortSignificant}
}

// Valid reports whether e is one of the known effort values.
func (e Effort) Valid() bool {
	for _, known := range AllEfforts() {
		if e == known {
			return true
		}
	}
	return false
}

// Status is the user's progress on a recommendation.
type Status string

// Status values. New recommendations start as pending.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusDismissed  Status = "dismissed"
)

// DefaultStatus is applied when a recommendation is saved without a status.
const DefaultStatus = StatusPending

// AllStatuses returns the known status values.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted, StatusDismissed}
}

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}
