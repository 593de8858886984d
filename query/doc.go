// Package query parses protein-group queries.
//
// A query lists one protein group per line. The proteins of a group are separated by a
// delimiter, ";" unless configured otherwise:
//
//	P04637;P02340
//	P38398
//	Q00987;P04637
//
// The line, trimmed, is the group identifier. Parsing yields the group mapping consumed by
// the grouping pipeline and the deduplicated protein list sent to the retrieval service.
package query
