package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Transport is the retrieval mechanism for a leaf.
type Transport string

const (
	TransportHTTP   Transport = "http"
	TransportSync   Transport = "rsync"
	TransportEither Transport = "either"
)

// ErrInvalidTransport is wrapped by ParseTransport for unknown values.
var ErrInvalidTransport = errors.New("invalid transport")

// String returns the wire name of the transport.
func (t Transport) String() string {
	return string(t)
}

// ParseTransport converts a wire value into a Transport.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(strings.ToLower(s)); t {
	case TransportHTTP, TransportSync, TransportEither:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransport, s)
	}
}

// TransportForURL infers the transport from a URL scheme.
func TransportForURL(url string) Transport {
	if HasPrefixFoldASCII(url, "rsync://") {
		return TransportSync
	}
	return TransportHTTP
}
