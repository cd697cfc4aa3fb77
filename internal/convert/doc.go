// Package convert runs one end-to-end conversion: it loads the ground-truth
// categories, decodes the prediction document, normalizes its records, and
// writes the results document atomically.
//
// Run is the only entry point the CLI uses. It never leaves a partial output
// file: the results are encoded into a temp file under an advisory lock and
// renamed into place, and nothing is written when every record was dropped
// (coco.ErrNoResults) or when the run is a dry run.
package convert
