// Package gitrepo models git remote URLs and builds the token-authenticated
// push URL used by unattended repository synchronization.
package gitrepo
