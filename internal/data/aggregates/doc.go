// Package aggregates implements the application, offering change and restriction
// aggregates on top of the table repos in internal/data/repos.
//
// Each write runs in one transaction from the TxRunner. Restrictions and notification rows
// are inserted inside that transaction; hooks and the caller's publishers see them only
// after commit. Overlap checks read outside the transaction and never write.
package aggregates
