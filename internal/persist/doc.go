// Package persist stores, atomically replaces and reconstructs the
// recommendation graph of one analysis.
//
// The package has two entry points with deliberately different failure modes:
//
//   - SaveRecommendations is fail-closed. Any irregularity aborts the whole
//     save with a typed *Error and no partial effect.
//   - GetRecommendations is fail-open. Any irregularity is logged and resolves
//     to an empty slice.
//
// # Replace-all
//
// A save deletes every recommendation of the analysis (and their actions,
// examples and resources) and inserts the new set inside one transaction. The
// stored state always equals the last saved payload; there is no merge or
// partial update.
//
// # Collaborators
//
// The caller supplies the database handle (DB) and the transaction boundaries
// (TxCoordinator). The writer never issues BEGIN or COMMIT itself; it only calls
// the coordinator, so each call site controls transaction scope. Callers must
// serialize saves for the same analysis.
package persist
