package wsclient

import "strings"

const (
	wssPrefix   = "wss://"
	defaultPort = "443"
)

// ParseURL implements the exchange client's minimal wss:// URL grammar:
// require the "wss://" prefix, split the remainder at the first '/' into
// host:port and target (target defaults to "/"), then split host:port at
// ':' for host and port (port defaults to "443"). An empty host or port
// after defaulting is InvalidUrl.
func ParseURL(raw string) (host, port, target string, err error) {
	if !strings.HasPrefix(raw, wssPrefix) {
		return "", "", "", &Error{Kind: InvalidUrl, Detail: "missing wss:// scheme"}
	}
	rest := raw[len(wssPrefix):]

	hostPort := rest
	target = "/"
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		hostPort = rest[:idx]
		target = rest[idx:]
	}

	host = hostPort
	port = defaultPort
	if idx := strings.IndexByte(hostPort, ':'); idx >= 0 {
		host = hostPort[:idx]
		port = hostPort[idx+1:]
	}

	if host == "" || port == "" {
		return "", "", "", &Error{Kind: InvalidUrl, Detail: "empty host or port"}
	}

	return host, port, target, nil
}
