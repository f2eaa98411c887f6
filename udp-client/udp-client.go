package udp_client

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/Ayvan/ipk24chat-client/metrics"
	"github.com/Ayvan/ipk24chat-client/models"
	"github.com/Ayvan/ipk24chat-client/session"
	"github.com/luci/go-render/render"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNotDelivered is returned when the retransmission budget of a message ran
// out without a Confirm.
var ErrNotDelivered = errors.New("message was not confirmed by the server")

// max UDP payload
const maxDatagramSize = 65535

type Config struct {
	Host string
	Port uint16
	// wait for a Confirm before sending again
	Timeout time.Duration
	// additional transmissions after the first one
	MaxRetransmissions int
}

// Client runs the session over UDP using the binary encoding. Every message
// except Confirm is retransmitted until the server confirms it.
type Client struct {
	cfg     Config
	engine  *session.Engine
	metrics *metrics.Metrics

	conn *net.UDPConn

	mu      sync.Mutex
	server  *net.UDPAddr
	nextID  uint16
	pending map[uint16]*pending
	seen    map[string]map[uint16]struct{}

	ctx    context.Context
	cancel context.CancelFunc

	tasks     sync.WaitGroup
	reader    sync.WaitGroup
	closeOnce sync.Once
}

// pending is one unconfirmed outbound message and its retransmission task.
type pending struct {
	id     uint16
	kind   models.Type
	cancel context.CancelFunc
	// receives nil on Confirm or ErrNotDelivered on exhaustion, exactly once
	done chan error
}

func NewClient(cfg Config, out *session.Printer, m *metrics.Metrics) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		cfg:     cfg,
		metrics: m,
		pending: make(map[uint16]*pending),
		seen:    make(map[string]map[uint16]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.engine = session.NewEngine(c, out)

	return c
}

func (c *Client) Engine() *session.Engine {
	return c.engine
}

// Connect resolves the server and opens the socket. The socket is left
// unconnected so replies from a migrated server port are received.
func (c *Client) Connect() error {
	address := net.JoinHostPort(c.cfg.Host, strconv.Itoa(int(c.cfg.Port)))

	server, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return &session.TransportError{Op: "resolve " + address, Err: err}
	}

	network := "udp6"
	if server.IP.To4() != nil {
		network = "udp4"
	}

	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return &session.TransportError{Op: "open socket", Err: err}
	}

	c.conn = conn
	c.server = server

	logrus.Infof("Sending datagrams from %s to %s", conn.LocalAddr(), server)

	c.reader.Add(1)
	go c.read()

	return nil
}

func (c *Client) Input(line string) {
	c.engine.Input(line)
}

// Leave says goodbye to the server and waits for the Bye to be confirmed.
func (c *Client) Leave() {
	c.engine.Leave()
}

func (c *Client) Done() <-chan struct{} {
	return c.engine.Done()
}

func (c *Client) ExitCode() int {
	return c.engine.ExitCode()
}

// Server returns the endpoint datagrams are currently sent to.
func (c *Client) Server() *net.UDPAddr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.server
}

// Send assigns m the next message id and starts its retransmission task.
func (c *Client) Send(m models.Message) error {
	_, err := c.transmit(m)
	return err
}

// Deliver is Send that waits for the Confirm or for the budget to run out.
func (c *Client) Deliver(m models.Message) error {
	p, err := c.transmit(m)
	if err != nil || p == nil {
		return err
	}

	select {
	case err := <-p.done:
		return err
	case <-c.ctx.Done():
		return &session.TransportError{Op: "deliver", Err: net.ErrClosed}
	}
}

func (c *Client) transmit(m models.Message) (*pending, error) {
	if m.Type() == models.ConfirmType {
		data, err := m.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return nil, c.write(data, m.Type(), nil)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return nil, &session.TransportError{Op: "send", Err: net.ErrClosed}
	}
	c.nextID++
	m.SetID(c.nextID)
	data, err := m.MarshalBinary()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	ctx, cancel := context.WithCancel(c.ctx)
	p := &pending{
		id:     m.ID(),
		kind:   m.Type(),
		cancel: cancel,
		done:   make(chan error, 1),
	}
	c.pending[p.id] = p
	c.tasks.Add(1)
	c.mu.Unlock()

	go c.retransmit(ctx, p, data)

	return p, nil
}

// retransmit sends data once plus up to MaxRetransmissions more times, one
// timeout apart, until ctx is canceled by a Confirm or by shutdown.
func (c *Client) retransmit(ctx context.Context, p *pending, data []byte) {
	defer c.tasks.Done()

	for attempt := 0; attempt <= c.cfg.MaxRetransmissions; attempt++ {
		if attempt > 0 {
			logrus.Debugf("Retransmitting %s %d (%d/%d)", p.kind, p.id, attempt, c.cfg.MaxRetransmissions)
			c.metrics.Retransmitted()
		}

		if err := c.write(data, p.kind, nil); err != nil {
			logrus.Warnf("Error writing %s %d: %s", p.kind, p.id, err)
		}

		timer := time.NewTimer(c.cfg.Timeout)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	if !c.forget(p.id) {
		// confirmed at the last moment
		return
	}

	c.metrics.Undelivered()
	err := errors.Wrapf(ErrNotDelivered, "%s message %d after %d attempts", p.kind, p.id, c.cfg.MaxRetransmissions+1)
	logrus.Warn(err)

	p.done <- err
	c.engine.Fail(err)
}

// acknowledge cancels the retransmission of id. It is a no-op when id is not
// in flight anymore.
func (c *Client) acknowledge(id uint16) {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		logrus.Debugf("Confirm for unknown message %d", id)
		return
	}

	p.cancel()
	p.done <- nil
	logrus.Debugf("%s %d confirmed", p.kind, id)
}

// forget removes id from the in-flight table and reports whether it was there.
func (c *Client) forget(id uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[id]; !ok {
		return false
	}
	delete(c.pending, id)
	return true
}

// InFlight returns the number of unconfirmed messages.
func (c *Client) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// write sends one datagram to addr, or to the current server when addr is nil.
func (c *Client) write(data []byte, kind models.Type, addr *net.UDPAddr) error {
	if addr == nil {
		c.mu.Lock()
		addr = c.server
		c.mu.Unlock()
	}

	if _, err := c.conn.WriteToUDP(data, addr); err != nil {
		return &session.TransportError{Op: "send " + kind.String(), Err: err}
	}

	c.metrics.MessageSent(kind)
	return nil
}

// Close cancels every retransmission task, then closes the socket and waits
// for the receive loop.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.cancel()
		c.mu.Unlock()
		c.tasks.Wait()

		c.mu.Lock()
		for id := range c.pending {
			delete(c.pending, id)
		}
		c.mu.Unlock()

		if c.conn != nil {
			err = c.conn.Close()
			c.reader.Wait()
		}
		logrus.Info("Socket closed")
	})
	return err
}

func (c *Client) read() {
	defer c.reader.Done()

	logrus.Info("Started datagram reader...")

	buf := make([]byte, maxDatagramSize)

	for {
		n, addr, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || c.ctx.Err() != nil {
				logrus.Debugf("Reader stopped: %s", err)
				return
			}
			logrus.Warnf("Error reading: %s", err)
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		c.handle(data, addr)
	}
}

func (c *Client) handle(data []byte, addr *net.UDPAddr) {
	// Confirm first, whatever happens to the payload.
	if t, id, ok := models.PeekHeader(data); ok && t != models.ConfirmType {
		confirm, _ := (&models.Confirm{RefMessageID: id}).MarshalBinary()
		if err := c.write(confirm, models.ConfirmType, addr); err != nil {
			logrus.Warnf("Error confirming %s %d: %s", t, id, err)
		}
	}

	m, err := models.DecodeBinary(data)
	if err != nil {
		logrus.Debugf("Malformed datagram % x from %s: %s", data, addr, err)
		c.metrics.Malformed()
		c.engine.Violation(err)
		return
	}

	c.metrics.MessageReceived(m.Type())

	if confirm, ok := m.(*models.Confirm); ok {
		c.acknowledge(confirm.RefMessageID)
		return
	}

	if c.duplicate(addr, m.ID()) {
		logrus.Debugf("Duplicate %s %d from %s", m.Type(), m.ID(), addr)
		c.metrics.Duplicate()
		return
	}

	logrus.Debug("Received: ", render.Render(m))

	if tr := c.engine.Receive(m); tr.Authenticated() {
		c.migrate(addr)
	}
}

// duplicate records id as processed for addr and reports whether it already was.
func (c *Client) duplicate(addr *net.UDPAddr, id uint16) bool {
	key := addr.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	ids, ok := c.seen[key]
	if !ok {
		ids = make(map[uint16]struct{})
		c.seen[key] = ids
	}
	if _, ok := ids[id]; ok {
		return true
	}
	ids[id] = struct{}{}
	return false
}

// migrate points all further datagrams at the address the successful auth
// Reply came from.
func (c *Client) migrate(addr *net.UDPAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.server.String() == addr.String() {
		return
	}
	logrus.Infof("Server endpoint moved from %s to %s", c.server, addr)
	c.server = addr
}
