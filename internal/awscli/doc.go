// Package awscli coordinates AWS command-line client invocations through execshell.
//
// It exposes the EC2 snapshot, SNS, CloudWatch, and STS operations used by the
// snapshot rotation and account setup commands, decoding the CLI's JSON output
// into typed results.
package awscli
