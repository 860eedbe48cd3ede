// Package monitor implements the host health check command.
//
// A monitoring run samples CPU, memory, and disk utilization, verifies that
// required processes are running, writes a JSON status report, and notifies
// the configured heartbeat and webhook endpoints.
package monitor
