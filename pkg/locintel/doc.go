// Package locintel assembles the retail location-intelligence workflow on
// top of the stageflow engine.
//
// The workflow parses a free-text request into a target location and
// business type, researches the market, maps competitors, quantifies the
// gap, produces a strategic report, and then fans out three artifact
// generators in parallel: an HTML executive report, an infographic image,
// and an audio overview. All domain work happens behind narrow
// collaborator interfaces; this package owns only the wiring.
package locintel
