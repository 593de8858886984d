// Package vocabulary names the attribute columns the grouping pipeline reads and writes,
// and the policy that decides how each node attribute of a group node is derived from
// its members.
//
// Column names follow the substrate convention "namespace::name". Columns without a
// namespace ("name", "query term", "interaction") are shared with the retrieval
// service. Columns in the proteovis namespace are written by this module only.
//
// # Attribute policies
//
// Every group-node attribute has one of four policies:
//
//	PolicyCopy     value of the representative member
//	PolicyConcat   member values joined with ";" in member order
//	PolicyUnion    set union of member string lists
//	PolicyAverage  arithmetic mean over members that have a value
//
// Policies are registered per column or per namespace. A Registry starts from
// DefaultRegistry and may be adjusted before the pipeline runs:
//
//	reg := vocabulary.DefaultRegistry()
//	reg.Register("stringdb::disease score", vocabulary.PolicyAverage,
//	    vocabulary.WithDescription("mean disease association score"))
//	reg.RegisterNamespace("diseases", vocabulary.PolicyAverage)
package vocabulary
