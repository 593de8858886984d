package retrieval

import (
	"fmt"
	"strings"

	"github.com/atanasg/ProteoVisualizer/errors"
)

// Network types understood by the retrieval service.
const (
	NetworkFunctional = "functional"
	NetworkPhysical   = "physical"
)

// Defaults applied by Args.WithDefaults.
const (
	DefaultTaxonID     = 9606
	DefaultSpecies     = "Homo sapiens"
	DefaultCutoff      = 0.4
	DefaultNetworkType = NetworkFunctional
)

// Args are the retrieval parameters. Either TaxonID or Species identifies the species.
type Args struct {
	// Terms is the newline-separated protein list.
	Terms       string  `json:"terms"`
	TaxonID     int     `json:"taxon_id,omitempty"`
	Species     string  `json:"species,omitempty"`
	Cutoff      float64 `json:"cutoff"`
	NetworkType string  `json:"network_type"`
	// NetworkName names the produced network. Empty keeps the service's name.
	NetworkName string `json:"network_name,omitempty"`
}

// WithDefaults fills the network type. Species and cutoff have no implicit default
// because a missing species is an input error.
func (a Args) WithDefaults() Args {
	if a.NetworkType == "" {
		a.NetworkType = DefaultNetworkType
	}
	return a
}

// Validate checks the input contract.
func (a Args) Validate() error {
	if a.TaxonID <= 0 && strings.TrimSpace(a.Species) == "" {
		return errors.WrapInvalid(errors.ErrMissingSpecies, "Args", "Validate", "species check")
	}
	if a.Cutoff < 0 || a.Cutoff > 1 {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrCutoffRange, a.Cutoff), "Args", "Validate", "cutoff check")
	}
	switch a.NetworkType {
	case NetworkFunctional, NetworkPhysical:
	default:
		return errors.WrapInvalid(fmt.Errorf("%w: %q", errors.ErrUnknownNetwork, a.NetworkType), "Args", "Validate", "network type check")
	}
	if strings.TrimSpace(a.Terms) == "" {
		return errors.WrapInvalid(errors.ErrEmptyQuery, "Args", "Validate", "terms check")
	}
	return nil
}
