// Package ssh implements the remote-session capability over
// golang.org/x/crypto/ssh: connect to a host, run a command with optional
// PTY allocation, capture output, close.
package ssh

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"xssh/internal/logging"
)

// DefaultConnectTimeout bounds each connection attempt. There is no
// per-command timeout: a run proceeds to completion or to per-host
// failure.
const DefaultConnectTimeout = 5 * time.Second

// Options carries per-session transport settings shared read-only across
// concurrent executions.
type Options struct {
	Port           int           // SSH port (0 means 22)
	ConnectTimeout time.Duration // Per-connection timeout (0 means DefaultConnectTimeout)
	IdentityFile   string        // Optional private key path
	X11            bool          // X11 forwarding requested
	LocalForward   string        // Local port forwarding spec ([bind:]port:host:hostport)
	DynamicForward string        // Dynamic forwarding spec ([bind:]port)
}

// Result is the outcome of executing a command on one host. Output holds
// the combined stdout and stderr text, stdout first.
type Result struct {
	Host     string
	Output   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// Failed reports whether the result counts as a failure.
func (r *Result) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// Session is an established connection that can run one or more commands.
type Session interface {
	// Run executes command on the remote host, allocating a PTY when
	// requested, and returns the captured result.
	Run(command string, allocatePTY bool) *Result

	// Close terminates the connection.
	Close() error
}

// Dialer opens sessions. The executor depends on this interface so tests
// can count and script connections.
type Dialer interface {
	Connect(ctx context.Context, host, user string, opts Options) (Session, error)
}

// NewDialer returns a Dialer backed by golang.org/x/crypto/ssh.
func NewDialer(logger *logging.Logger) Dialer {
	return &dialer{logger: logger}
}

type dialer struct {
	logger *logging.Logger
}

// Client is an established SSH connection to one host.
type Client struct {
	conn      *ssh.Client
	host      string
	logger    *logging.Logger
	forwarder *forwarder
}

// Connect establishes an SSH connection to host with a short fixed
// timeout. An empty user falls back to the local account name.
func (d *dialer) Connect(ctx context.Context, host, userName string, opts Options) (Session, error) {
	start := time.Now()

	if userName == "" {
		if u, err := user.Current(); err == nil {
			userName = u.Username
		}
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	port := opts.Port
	if port <= 0 {
		port = 22
	}

	config := &ssh.ClientConfig{
		User:            userName,
		Auth:            d.authMethods(opts),
		HostKeyCallback: d.hostKeyCallback(),
		Timeout:         timeout,
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	netDialer := &net.Dialer{Timeout: timeout}
	netConn, err := netDialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, address, config)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("ssh handshake failed for %s: %w", address, err)
	}

	client := &Client{
		conn:   ssh.NewClient(sshConn, chans, reqs),
		host:   host,
		logger: d.logger,
	}

	if opts.X11 && d.logger != nil {
		d.logger.Warn("x11 forwarding is not supported by the built-in transport", "host", host)
	}
	if opts.DynamicForward != "" && d.logger != nil {
		d.logger.Warn("dynamic port forwarding is not supported by the built-in transport", "host", host)
	}
	if opts.LocalForward != "" {
		fw, err := newForwarder(client.conn, opts.LocalForward)
		if err != nil {
			client.conn.Close()
			return nil, err
		}
		client.forwarder = fw
		if d.logger != nil {
			d.logger.Debug("local port forwarding active", "host", host, "spec", opts.LocalForward)
		}
	}

	if d.logger != nil {
		d.logger.LogConnection(host, userName, time.Since(start))
	}
	return client, nil
}

// Run executes command on the connected host. Stdout and stderr are
// captured separately and concatenated; a remote nonzero exit status is
// reported through ExitCode, not Err.
func (c *Client) Run(command string, allocatePTY bool) *Result {
	result := &Result{Host: c.host}
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	session, err := c.conn.NewSession()
	if err != nil {
		result.Err = fmt.Errorf("failed to create session: %w", err)
		result.ExitCode = 1
		return result
	}
	defer session.Close()

	if allocatePTY {
		modes := ssh.TerminalModes{
			ssh.ECHO:          0,
			ssh.TTY_OP_ISPEED: 14400,
			ssh.TTY_OP_OSPEED: 14400,
		}
		if err := session.RequestPty("xterm", 40, 80, modes); err != nil {
			result.Err = fmt.Errorf("failed to allocate pty: %w", err)
			result.ExitCode = 1
			return result
		}
	}

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	err = session.Run(command)
	result.Output = stdout.String() + stderr.String()

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			result.ExitCode = exitErr.ExitStatus()
		} else {
			result.Err = fmt.Errorf("remote execution error: %w", err)
			result.ExitCode = 1
		}
	}
	return result
}

// Close terminates the connection and stops any active forwarder.
func (c *Client) Close() error {
	if c.forwarder != nil {
		c.forwarder.stop()
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// authMethods assembles authentication in order of preference: agent,
// explicit identity file, then the conventional default keys.
func (d *dialer) authMethods(opts Options) []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	if agentConn, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK")); err == nil {
		methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(agentConn).Signers))
	}

	keyPaths := []string{}
	if opts.IdentityFile != "" {
		keyPaths = append(keyPaths, opts.IdentityFile)
	}
	if home, err := os.UserHomeDir(); err == nil {
		keyPaths = append(keyPaths,
			filepath.Join(home, ".ssh", "id_ed25519"),
			filepath.Join(home, ".ssh", "id_rsa"),
		)
	}
	for _, path := range keyPaths {
		keyBytes, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			continue
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	return methods
}

// hostKeyCallback tries known_hosts first and falls back to accepting
// unknown keys with a logged warning, which keeps the tool usable across
// large fleets with incomplete known_hosts coverage.
func (d *dialer) hostKeyCallback() ssh.HostKeyCallback {
	if home, err := os.UserHomeDir(); err == nil {
		knownHostsFile := filepath.Join(home, ".ssh", "known_hosts")
		if _, err := os.Stat(knownHostsFile); err == nil {
			if cb, err := knownhosts.New(knownHostsFile); err == nil {
				return cb
			}
		}
	}
	if cb, err := knownhosts.New("/etc/ssh/ssh_known_hosts"); err == nil {
		return cb
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if d.logger != nil {
			d.logger.Warn("host key verification disabled", "host", hostname)
		}
		return nil
	}
}
