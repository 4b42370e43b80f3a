// Package model defines the recommendation graph persisted by seorec.
//
// This package contains type definitions and small value helpers only. Every
// other internal package imports model; model imports nothing internal.
//
// The graph for one analysis is:
//
//	Recommendation
//	  ├── Actions   (ordered by Step, 1-based)
//	  ├── Example   (at most one before/after pair)
//	  └── Resources (zero or more links)
//
// JSON and YAML tags use camelCase to match the payload produced by the
// analyzer.
package model
