package qiskitcli

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/cjliu20152/qiskit/common"
)

// DaemonURI is a parsed daemon connection URI.
type DaemonURI struct {
	Scheme  string // "unix", "tcp", or "pipe"
	Address string // full address for dial
}

// Supported URI schemes.
const (
	SchemeUnix = "unix"
	SchemeTCP  = "tcp"
	SchemePipe = "pipe"
)

var (
	ErrEmptyURI          = errors.New("daemon URI cannot be empty")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	ErrInvalidPath       = errors.New("invalid path in URI")
	ErrPipeNotSupported  = errors.New("pipe:// scheme only supported on Windows")
	ErrUnixNotSupported  = errors.New("unix:// scheme not supported on Windows")
)

// ParseDaemonURI parses a daemon URI string into a DaemonURI struct.
func ParseDaemonURI(rawURI string) (*DaemonURI, error) {
	rawURI = strings.TrimSpace(rawURI)
	if rawURI == "" {
		return nil, ErrEmptyURI
	}

	parsed, err := url.Parse(rawURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		return nil, ErrUnsupportedScheme
	}

	switch scheme {
	case SchemeUnix:
		return parseUnixURI(parsed)
	case SchemeTCP:
		return parseTCPURI(parsed)
	case SchemePipe:
		return parsePipeURI(parsed)
	default:
		return nil, ErrUnsupportedScheme
	}
}

func parseUnixURI(parsed *url.URL) (*DaemonURI, error) {
	if runtime.GOOS == "windows" {
		return nil, ErrUnixNotSupported
	}

	// For unix:///path, Host is empty and Path carries the socket path.
	// A non-empty Host means a relative path, which is invalid.
	if parsed.Host != "" {
		return nil, ErrInvalidPath
	}

	path := parsed.Path
	if path == "" || !strings.HasPrefix(path, "/") {
		return nil, ErrInvalidPath
	}

	return &DaemonURI{
		Scheme:  SchemeUnix,
		Address: path,
	}, nil
}

func parseTCPURI(parsed *url.URL) (*DaemonURI, error) {
	host := parsed.Host
	if host == "" {
		return nil, ErrInvalidPath
	}

	_, port, err := parseHostPort(host)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	var address string
	if port == "" {
		address = fmt.Sprintf("%s:%d", host, common.DefaultTCPPort)
	} else {
		portNum, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid port", ErrInvalidPath)
		}
		if portNum < 1 || portNum > 65535 {
			return nil, fmt.Errorf("%w: port out of range", ErrInvalidPath)
		}
		address = host
	}

	return &DaemonURI{
		Scheme:  SchemeTCP,
		Address: address,
	}, nil
}

func parsePipeURI(parsed *url.URL) (*DaemonURI, error) {
	if runtime.GOOS != "windows" {
		return nil, ErrPipeNotSupported
	}

	pipeName := parsed.Host
	if pipeName == "" {
		return nil, ErrInvalidPath
	}

	if strings.HasPrefix(pipeName, `\\.\pipe\`) {
		return &DaemonURI{
			Scheme:  SchemePipe,
			Address: pipeName,
		}, nil
	}

	return &DaemonURI{
		Scheme:  SchemePipe,
		Address: fmt.Sprintf(`\\.\pipe\%s`, pipeName),
	}, nil
}

// parseHostPort splits a host:port string, handling bracketed IPv6
// addresses. Port may be empty if not present.
func parseHostPort(hostport string) (string, string, error) {
	if strings.HasPrefix(hostport, "[") {
		closeBracket := strings.Index(hostport, "]")
		if closeBracket == -1 {
			return "", "", errors.New("missing closing bracket in IPv6 address")
		}

		host := hostport[:closeBracket+1]
		remainder := hostport[closeBracket+1:]

		if remainder == "" {
			return host, "", nil
		}
		if !strings.HasPrefix(remainder, ":") {
			return "", "", errors.New("invalid format after IPv6 address")
		}
		return host, remainder[1:], nil
	}

	switch strings.Count(hostport, ":") {
	case 0:
		return hostport, "", nil
	case 1:
		parts := strings.Split(hostport, ":")
		return parts[0], parts[1], nil
	default:
		// Bare IPv6 without brackets carries no port.
		return hostport, "", nil
	}
}
