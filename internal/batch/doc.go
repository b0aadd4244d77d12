// Package batch runs an operation over a list of items strictly in
// sequence and reports partial failure.
//
// A run stops at the first failing item. The Result tells the caller how
// many items completed, how many were requested, and which error stopped
// the run, so bulk mutations are never reported as all-or-nothing.
package batch
