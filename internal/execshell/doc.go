// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines abstractions used throughout trendops
// to run git, the AWS CLI, curl, crontab, and host probe commands in a testable
// manner.
package execshell
