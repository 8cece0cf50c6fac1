// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts intentionally avoid persistence/transport implementation details
// and represent semantic write boundaries where invariants must be enforced atomically.
// Every write method runs in exactly one transaction owned by the aggregate; precondition
// failures are returned before the first write as *Error with CodeNotFound,
// CodeInvalidState or CodeValidation.
package aggregates
