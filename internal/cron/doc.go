// Package cron installs scheduled job entries through the crontab binary.
package cron
