// Package stageflow provides an in-process orchestration engine for
// multi-stage analytical workflows.
//
// A pipeline is an ordered chain of stages terminating in an optional
// fan-out group. Stages communicate exclusively through a shared key/value
// blackboard: each stage declares the state keys it requires and the single
// key it produces, and the engine validates the whole chain at assembly
// time, so a missing producer or a duplicate output key is a configuration
// error and never a runtime surprise.
//
// Sequential stages execute one at a time against the live blackboard. The
// fan-out group executes concurrently against an immutable snapshot taken
// at dispatch; each member writes through a private buffer that merges back
// into the blackboard in a single synchronized step when the member
// completes. The group joins on all members regardless of individual
// failures, so independent artifacts are never lost because a sibling
// failed.
//
// Lifecycle hooks run around every stage. A before-hook returns an explicit
// tri-state result (Continue, Override, Abort); an after-hook always runs,
// observing the stage's terminal outcome. Every run yields a RunOutcome
// enumerating each declared stage's status, even when the run aborts early.
package stageflow
