// Package maintenance runs declarative maintenance plans.
//
// A plan is a YAML document listing ordered steps, each invoking one of the
// operational commands with inline options. Step failures are reported and the
// remaining steps still run.
package maintenance
