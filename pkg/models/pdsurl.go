package models

import (
	"net/url"
	"strings"
)

// PDSURL is the address of a personal data server. Two families are
// accepted: file URLs, which map to a local directory and select the
// filesystem engine, and network URLs, which must use TLS except for
// loopback hosts. A trailing slash-only path is normalized away so the
// canonical form round-trips.
type PDSURL struct {
	raw      string
	local    bool
	filePath string
}

// isLoopbackHost checks if a hostname is a plaintext-permitted loopback host
func isLoopbackHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// ParsePDSURL validates s and returns it as a PDSURL.
func ParsePDSURL(s string) (PDSURL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return PDSURL{}, invalidInput(s, "not a valid URL: "+err.Error())
	}

	raw := s
	if u.Path == "/" {
		raw = strings.TrimSuffix(raw, "/")
	}

	switch u.Scheme {
	case "file":
		if u.Host != "" && u.Host != "localhost" {
			return PDSURL{}, invalidInput(s, "a file URL must not name a remote host")
		}
		if u.Path == "" || u.Path == "/" {
			return PDSURL{}, invalidInput(s, "a file URL must carry a directory path")
		}
		return PDSURL{raw: raw, local: true, filePath: u.Path}, nil
	case "https":
		if u.Hostname() == "" {
			return PDSURL{}, invalidInput(s, "a PDS URL must name a host")
		}
		return PDSURL{raw: raw}, nil
	case "http":
		if !isLoopbackHost(u.Hostname()) {
			return PDSURL{}, invalidInput(s, "plaintext HTTP is only allowed for loopback hosts")
		}
		return PDSURL{raw: raw}, nil
	default:
		return PDSURL{}, invalidInput(s, "a PDS URL must use the file, https, or http scheme")
	}
}

// IsLocal reports whether the URL selects the filesystem engine.
func (p PDSURL) IsLocal() bool {
	return p.local
}

// FilePath returns the root directory for a file URL, or "" for network
// URLs.
func (p PDSURL) FilePath() string {
	return p.filePath
}

// XRPCURL returns the HTTP endpoint for the named XRPC method.
func (p PDSURL) XRPCURL(method string) string {
	return p.raw + "/xrpc/" + method
}

func (p PDSURL) String() string {
	return p.raw
}

// MarshalText renders the URL in its canonical string form.
func (p PDSURL) MarshalText() ([]byte, error) {
	return []byte(p.raw), nil
}

// UnmarshalText parses and validates a PDS URL from its string form.
func (p *PDSURL) UnmarshalText(text []byte) error {
	parsed, err := ParsePDSURL(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
