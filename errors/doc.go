// Package errors provides the classified error handling used across ProteoVisualizer.
//
// # Overview
//
// Every error leaving a package boundary falls in one of three classes:
//
//   - Transient: the retrieval service timed out, NATS is reconnecting, the rate
//     limiter refused a request. Retrying may succeed.
//   - Invalid: the caller supplied a request the pipeline cannot run (no taxon and no
//     species, cutoff outside [0,1], unknown network type, a column type mismatch).
//     Never retried.
//   - Fatal: the call cannot produce a result (no network was retrieved). Reported to
//     the caller, the process keeps running.
//
// Data-quality problems met while grouping (unresolved proteins, missing columns,
// averages without contributors) are not errors. They are collected as warnings in the
// grouping report and the pipeline continues.
//
// # Wrapping
//
// Errors are wrapped with the component and method that observed them:
//
//	if err := net.NodeTable().Set(node, col, v); err != nil {
//	    return errors.Wrap(err, "Duplicator", "copyRow", "attribute copy")
//	}
//
// which renders as "Duplicator.copyRow: attribute copy failed: <cause>". The classified
// variants attach a class that callers test with IsTransient, IsInvalid and IsFatal:
//
//	if req.TaxonID == nil && req.Species == "" {
//	    return nil, errors.WrapInvalid(errors.ErrMissingSpecies, "Service", "RetrieveAndGroup", "request validation")
//	}
//
// All wrappers keep errors.Is and errors.As working through the chain.
package errors
