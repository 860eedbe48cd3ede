// Package snapshot implements EBS snapshot creation and retention rotation.
//
// Each run creates one snapshot of the configured volume and then removes the
// oldest automatically-managed snapshots beyond the retention count. Cleanup
// failures never abort the run.
package snapshot
