package did

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const prefix = "did:wba:"

// Parse splits a did:wba identifier into host, optional port, and path
// segments. It percent-decodes the host-port segment (colons are encoded as
// %3A in the identifier so they don't collide with DID syntactic colons).
func Parse(did AgentDID) (host string, port *int, path []string, err error) {
	s := string(did)
	if !strings.HasPrefix(s, prefix) {
		return "", nil, nil, ErrDidSyntax
	}
	rest := s[len(prefix):]
	if rest == "" {
		return "", nil, nil, ErrDidSyntax
	}
	parts := strings.Split(rest, ":")
	hostPort, err := url.PathUnescape(parts[0])
	if err != nil || hostPort == "" {
		return "", nil, nil, ErrDidSyntax
	}
	if h, p, splitErr := net.SplitHostPort(hostPort); splitErr == nil {
		portNum, convErr := strconv.Atoi(p)
		if convErr != nil {
			return "", nil, nil, ErrDidSyntax
		}
		host = h
		port = &portNum
	} else {
		host = hostPort
	}
	if host == "" {
		return "", nil, nil, ErrDidSyntax
	}
	if len(parts) > 1 {
		path = parts[1:]
		for _, seg := range path {
			if seg == "" {
				return "", nil, nil, ErrDidSyntax
			}
		}
	}
	return host, port, path, nil
}

// Build constructs a did:wba identifier from a host, optional port, and path
// segments, percent-encoding the colon between host and port.
func Build(host string, port *int, path ...string) (AgentDID, error) {
	if host == "" {
		return "", ErrDidSyntax
	}
	hostPort := host
	if port != nil {
		hostPort = fmt.Sprintf("%s%%3A%d", host, *port)
	}
	s := prefix + hostPort
	for _, seg := range path {
		if seg == "" {
			return "", ErrDidSyntax
		}
		s += ":" + seg
	}
	return AgentDID(s), nil
}

// WellKnownURL constructs the HTTPS .well-known/did.json URL a did:wba
// identifier resolves to.
func WellKnownURL(host string, port *int, path []string) string {
	authority := host
	if port != nil {
		authority = fmt.Sprintf("%s:%d", host, *port)
	}
	u := "https://" + authority + "/"
	if len(path) > 0 {
		u += strings.Join(path, "/") + "/"
	}
	u += ".well-known/did.json"
	return u
}
