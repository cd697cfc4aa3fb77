// Package main hosts the detconv CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the run logger, and
// hands the work to internal/convert. Reporting commands read the ground-truth
// categories and the optional run ledger and render them as tables or JSON.
//
// Exit status is 0 on success, 2 when a conversion kept no detections, and 1
// for every other failure.
package main
