// Package envfile loads credentials from the process environment and from
// local KEY=VALUE files in the style consumed by unattended cron jobs.
package envfile
