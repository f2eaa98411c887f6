package tcp_client

import (
	"io"
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

const dialTimeout = 10 * time.Second

// Client runs the session over a TCP stream using the text encoding.
type Client struct {
	host    string
	port    uint16
	engine  *session.Engine
	metrics *metrics.Metrics

	conn    net.Conn
	writeMu sync.Mutex

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewClient(host string, port uint16, out *session.Printer, m *metrics.Metrics) *Client {
	c := &Client{
		host:    host,
		port:    port,
		metrics: m,
	}
	c.engine = session.NewEngine(c, out, session.ReplyToBye())
	return c
}

func (c *Client) Engine() *session.Engine {
	return c.engine
}

// Connect dials the server and starts the receive loop. A dial failure is
// fatal, there is no retry.
func (c *Client) Connect() error {
	conn, err := dialServer(c.host, c.port)
	if err != nil {
		return err
	}
	c.conn = conn

	c.wg.Add(1)
	go c.read()

	return nil
}

func dialServer(host string, port uint16) (net.Conn, error) {
	address := net.JoinHostPort(host, strconv.Itoa(int(port)))

	logrus.Info("Connecting to server... ", address)

	dialer := &net.Dialer{
		KeepAlive: 30 * time.Second,
		Timeout:   dialTimeout,
	}

	conn, err := dialer.Dial("tcp", address)
	if err != nil {
		return nil, &session.TransportError{Op: "connect to " + address, Err: err}
	}

	logrus.Info("Successfully connected to ", address)

	return conn, nil
}

func (c *Client) Input(line string) {
	c.engine.Input(line)
}

// Leave says goodbye to the server.
func (c *Client) Leave() {
	c.engine.Leave()
}

func (c *Client) Done() <-chan struct{} {
	return c.engine.Done()
}

func (c *Client) ExitCode() int {
	return c.engine.ExitCode()
}

// Send writes m as one CRLF-terminated line in a single write call.
func (c *Client) Send(m models.Message) error {
	line, err := models.EncodeLine(m)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return &session.TransportError{Op: "write", Err: net.ErrClosed}
	}

	logrus.Debugf("Sending to server: %q", line)

	if _, err := c.conn.Write(line); err != nil {
		return &session.TransportError{Op: "write", Err: err}
	}

	c.metrics.MessageSent(m.Type())
	return nil
}

// Deliver is Send, the stream guarantees delivery itself.
func (c *Client) Deliver(m models.Message) error {
	return c.Send(m)
}

// Close stops the receive loop and closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		if c.conn != nil {
			err = c.conn.Close()
		}
		c.writeMu.Unlock()
		c.wg.Wait()
		logrus.Info("Connection closed")
	})
	return err
}

func (c *Client) read() {
	defer c.wg.Done()

	logrus.Info("Started connection reader...")

	framer := newLineFramer(MaxLineLength)
	chunk := make([]byte, 2048)

	for {
		n, err := c.conn.Read(chunk)
		if n > 0 {
			lines, ferr := framer.Feed(chunk[:n])
			for _, line := range lines {
				c.dispatch(line)
			}
			if ferr != nil {
				c.metrics.Malformed()
				c.engine.Violation(ferr)
			}
		}

		if err == nil {
			continue
		}

		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			logrus.Warnf("Read timeout: %s", err)
			continue
		}

		if c.engine.Session().Closing() {
			logrus.Debugf("Reader stopped: %s", err)
			return
		}

		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		logrus.Errorf("Error reading: %s", err)
		c.engine.Fail(&session.TransportError{Op: "connection closed by server", Err: err})
		return
	}
}

func (c *Client) dispatch(line []byte) {
	m, err := models.DecodeText(line)
	if err != nil {
		logrus.Debugf("Malformed line %q: %s", line, err)
		c.metrics.Malformed()
		c.engine.Violation(err)
		return
	}

	logrus.Debug("Received: ", render.Render(m))
	c.metrics.MessageReceived(m.Type())

	c.engine.Receive(m)
}
