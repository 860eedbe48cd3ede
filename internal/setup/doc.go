// Package setup provisions the AWS-side monitoring and scheduling resources
// used by the backup commands.
//
// A setup run verifies credentials, creates the alert topic and email
// subscription, installs CloudWatch alarms for the instance, and registers
// the recurring backup jobs in the user's crontab.
package setup
