package vocabulary

// Namespaces
const (
	// NamespaceStringDB holds attributes delivered by the STRING retrieval service.
	NamespaceStringDB = "stringdb"
	// NamespaceCompartment holds subcellular compartment confidence scores.
	NamespaceCompartment = "compartment"
	// NamespaceTissue holds tissue expression confidence scores.
	NamespaceTissue = "tissue"
	// NamespaceTarget holds drug target annotations.
	NamespaceTarget = "target"
	// NamespaceProteoVis holds columns written by the grouping pipeline.
	NamespaceProteoVis = "proteovis"
)

// Node columns
const (
	// QueryTerm is the protein (or group) identifier a node was retrieved for.
	QueryTerm = "query term"
	// Name is the node display identity.
	Name = "name"
	// DisplayName is the human-readable label.
	DisplayName = "display name"
	// CanonicalName is the canonical protein name.
	CanonicalName = "stringdb::canonical name"
	// DatabaseIdentifier is the external database identifier.
	DatabaseIdentifier = "stringdb::database identifier"
	// InternalID is the service-internal identifier.
	InternalID = "@id"
	// NodeNamespace is the identifier namespace of the node.
	NodeNamespace = "stringdb::namespace"
	// NodeType distinguishes proteins from compounds.
	NodeType = "stringdb::node type"
	// Species is the organism name.
	Species = "stringdb::species"
	// ImageURL points at the structure image.
	ImageURL = "stringdb::imageurl"
	// EnhancedLabel is the label passthrough used by the renderer.
	EnhancedLabel = "stringdb::enhancedLabel Passthrough"
	// FullName is the full protein name.
	FullName = "stringdb::full name"
	// Description is the free-text protein annotation.
	Description = "stringdb::description"
	// Sequence is the amino acid sequence.
	Sequence = "stringdb::sequence"
	// DevelopmentLevel is the drug target development level.
	DevelopmentLevel = "target::development level"
	// Family is the drug target family.
	Family = "target::family"
	// Structures lists the known structure identifiers.
	Structures = "stringdb::structures"
	// InteractorScore is the interactor confidence score.
	InteractorScore = "stringdb::interactor score"
	// Style is the visual style tag; group nodes get StyleCollapsed while collapsed.
	Style = "stringdb::STRING style"
	// UseForAnalysis marks nodes included in downstream enrichment analysis.
	UseForAnalysis = "proteovis::use for analysis"
)

// Edge columns
const (
	// Interaction is the interaction type of an edge.
	Interaction = "interaction"
	// Score is the combined STRING confidence score.
	Score = "stringdb::score"
	// EdgeExisting counts the underlying edges a meta-edge stands for.
	EdgeExisting = "proteovis::existing edges"
	// EdgePossible counts the node pairs a meta-edge could stand for.
	EdgePossible = "proteovis::possible edges"
	// EdgeAggregated is set once a meta-edge has been aggregated.
	EdgeAggregated = "proteovis::aggregated"
)

// Values
const (
	// InteractionIdentity marks the edge linking a protein to its duplicate.
	InteractionIdentity = "identity"
	// IdentityInfix joins the two node names in an identity edge name.
	IdentityInfix = " (identity) "
	// StyleCollapsed is the style of a collapsed group node.
	StyleCollapsed = "string:"
	// StyleExpanded clears the style when a group is expanded.
	StyleExpanded = ""
	// ConcatSeparator joins concatenated member values.
	ConcatSeparator = ";"
)
