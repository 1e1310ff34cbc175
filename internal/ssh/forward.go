package ssh

import (
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
)

// forwarder bridges a local listener to a remote address through an
// established SSH connection, implementing -L style local forwarding.
type forwarder struct {
	listener net.Listener
	conn     *ssh.Client
	remote   string
	done     chan struct{}
	once     sync.Once
}

// newForwarder parses a spec of the form [bind_address:]port:host:hostport,
// starts a local listener, and begins accepting in the background.
func newForwarder(conn *ssh.Client, spec string) (*forwarder, error) {
	bind, remote, err := parseForwardSpec(spec)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", bind, err)
	}

	fw := &forwarder{
		listener: listener,
		conn:     conn,
		remote:   remote,
		done:     make(chan struct{}),
	}
	go fw.accept()
	return fw, nil
}

func parseForwardSpec(spec string) (bind, remote string, err error) {
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 3:
		// port:host:hostport
		return net.JoinHostPort("127.0.0.1", parts[0]), net.JoinHostPort(parts[1], parts[2]), nil
	case 4:
		// bind_address:port:host:hostport
		return net.JoinHostPort(parts[0], parts[1]), net.JoinHostPort(parts[2], parts[3]), nil
	default:
		return "", "", fmt.Errorf("invalid forward specification '%s': want [bind_address:]port:host:hostport", spec)
	}
}

func (f *forwarder) accept() {
	for {
		local, err := f.listener.Accept()
		if err != nil {
			select {
			case <-f.done:
				return
			default:
				continue
			}
		}
		go f.bridge(local)
	}
}

func (f *forwarder) bridge(local net.Conn) {
	defer local.Close()

	remote, err := f.conn.Dial("tcp", f.remote)
	if err != nil {
		return
	}
	defer remote.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		io.Copy(remote, local)
	}()
	go func() {
		defer wg.Done()
		io.Copy(local, remote)
	}()
	wg.Wait()
}

func (f *forwarder) stop() {
	f.once.Do(func() {
		close(f.done)
		f.listener.Close()
	})
}
