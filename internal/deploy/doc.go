// Package deploy validates deploy requests and sends them to the
// orchestration API.
//
// A Request carries the instance name, the catalog entry to instantiate, an
// optional VIM and optional parameter and configuration values. Each value
// can come from an uploaded .yaml file or from direct input, never both.
//
// Deployer records every deploy and delete in the operations log. A deploy
// of the same kind and name that is still pending is rejected with
// ErrDuplicateDeploy.
package deploy
