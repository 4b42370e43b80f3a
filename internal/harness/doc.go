// Package harness provides scenario-driven conformance testing for the
// recommendation persistence engine.
//
// A scenario creates analyses in a fresh SQLite file, drives the writer and
// reader through a flow of steps, checks each step's expect clause and then
// evaluates assertions over the final database state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	analyses:
//	  - https://shop.example        # gets id 1
//	flow:
//	  - op: save
//	    analysis: 1
//	    recommendations:
//	      - recId: rec_title
//	        title: Shorten the title
//	        priority: critical
//	    expect: { saved: 1 }
//	  - op: save
//	    analysis: 1
//	    fail_on: INSERT INTO recommendation_resources
//	    recommendations: [...]
//	    expect: { error: TRANSACTION }
//	  - op: read
//	    analysis: 1
//	    expect: { order: [rec_title] }
//	assertions:
//	  - type: row_count
//	    table: recommendations
//	    count: 1
//
// # Steps
//
//   - save: replace the analysis' recommendations (fail_on injects a statement failure)
//   - read: reconstruct the graph; analysis may be any YAML scalar
//   - set_status: update the status of rec_id within the analysis
//
// # Assertion Types
//
//   - row_count: a table holds exactly count rows
//   - single_batch: every recommendation of an analysis carries one batch id
//   - status: rec_id within an analysis has the given status
//
// # Deterministic Testing
//
// Batch ids come from testutil.SequenceBatchGenerator and timestamps from
// testutil.StepClock, so the trace and final state are identical across runs
// and can be compared against golden files with RunWithGolden.
package harness
