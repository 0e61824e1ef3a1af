// Package check contains the stages of the mailcheck verification pipeline:
// syntax validation, the DNS resolution chain, attribute lookups and the
// catch-all prober. Each stage returns a structured outcome and never fails
// the caller for heuristic ambiguity.
//
// These types can be used directly, but the recommended approach is to use
// the Verifier from the github.com/optimode/mailcheck package.
package check
