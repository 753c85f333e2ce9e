// Package model provides the data structures shared between the stageflow
// engine and its reporters. It defines the per-stage metadata exposed to
// observers and the Reporter interface implemented by the drawer and
// measure packages.
package model
