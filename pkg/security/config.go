// Package security holds the TLS settings of the NATS connection and the metrics endpoint.
package security

// ClientTLSConfig configures the TLS side of an outgoing connection. The system CA pool is
// always trusted; CAFiles add to it.
type ClientTLSConfig struct {
	Enabled            bool     `json:"enabled"`
	CAFiles            []string `json:"ca_files,omitempty"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify,omitempty"` // development only
	MinVersion         string   `json:"min_version,omitempty"`          // "1.2" or "1.3"

	MTLS ClientMTLSConfig `json:"mtls,omitempty"`
}

// ClientMTLSConfig is the certificate a client presents.
type ClientMTLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
}

// ServerTLSConfig configures a listening endpoint.
type ServerTLSConfig struct {
	Enabled    bool   `json:"enabled"`
	CertFile   string `json:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
	MinVersion string `json:"min_version,omitempty"`

	MTLS ServerMTLSConfig `json:"mtls,omitempty"`
}

// ServerMTLSConfig controls client certificate verification.
type ServerMTLSConfig struct {
	Enabled           bool     `json:"enabled"`
	ClientCAFiles     []string `json:"client_ca_files,omitempty"`
	RequireClientCert bool     `json:"require_client_cert,omitempty"`
	AllowedClientCNs  []string `json:"allowed_client_cns,omitempty"`
}

// Problems lists what is missing from an enabled client configuration.
func (c ClientTLSConfig) Problems() []string {
	if !c.Enabled {
		return nil
	}
	var out []string
	if !validMinVersion(c.MinVersion) {
		out = append(out, "min_version must be 1.2 or 1.3")
	}
	if c.MTLS.Enabled && (c.MTLS.CertFile == "" || c.MTLS.KeyFile == "") {
		out = append(out, "mtls needs cert_file and key_file")
	}
	return out
}

// Problems lists what is missing from an enabled server configuration.
func (c ServerTLSConfig) Problems() []string {
	if !c.Enabled {
		return nil
	}
	var out []string
	if c.CertFile == "" || c.KeyFile == "" {
		out = append(out, "cert_file and key_file are required")
	}
	if !validMinVersion(c.MinVersion) {
		out = append(out, "min_version must be 1.2 or 1.3")
	}
	if c.MTLS.Enabled && len(c.MTLS.ClientCAFiles) == 0 {
		out = append(out, "mtls needs client_ca_files")
	}
	return out
}

func validMinVersion(v string) bool {
	return v == "" || v == "1.2" || v == "1.3"
}
