// Package coco reshapes object-detection predictions written in the COCO
// annotation schema into the flat COCO results schema expected by detection
// evaluators.
//
// The package has two halves. The category resolver turns a ground-truth
// document's category list into an immutable name to id mapping. The record
// normalizer walks prediction records in order and either emits exactly one
// ResultRecord per record or drops it with a warning that names the record's
// index and the reason. Only an unrecognized top-level document shape aborts
// a run; every per-record problem is a skip.
//
// Diagnostics go to an injected *slog.Logger. Nothing here touches global
// logging state, the filesystem, or shared mutable data, so independent
// conversions may run concurrently.
package coco
