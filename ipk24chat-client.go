package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Ayvan/ipk24chat-client/config"
	"github.com/Ayvan/ipk24chat-client/metrics"
	"github.com/Ayvan/ipk24chat-client/session"
	"github.com/Ayvan/ipk24chat-client/tcp-client"
	"github.com/Ayvan/ipk24chat-client/udp-client"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Driver is the transport-specific client the runner feeds.
type Driver interface {
	Connect() error
	Input(line string)
	Leave()
	Done() <-chan struct{}
	ExitCode() int
	Close() error
}

type options struct {
	configPath  string
	transport   string
	server      string
	port        uint16
	timeout     uint16
	retries     uint8
	metricsAddr string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := 0
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ipk24chat-client",
		Short: "IPK24-CHAT client over TCP or UDP",
		Long: `Chat client for the IPK24-CHAT protocol.

Lines typed on standard input are sent as chat messages, lines starting
with / are local commands (see /help). Ctrl+C or end of input leaves the
server gracefully.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			code = serve(appConfig, stdin, stdout, stderr)
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultConfigPath, "config file path")
	flags.StringVarP(&opts.transport, "transport", "t", "", "transport protocol, tcp or udp")
	flags.StringVarP(&opts.server, "server", "s", "", "server IP address or hostname")
	flags.Uint16VarP(&opts.port, "port", "p", config.DefaultPort, "server port")
	flags.Uint16VarP(&opts.timeout, "timeout", "d", config.DefaultTimeout, "UDP confirmation timeout in milliseconds")
	flags.Uint8VarP(&opts.retries, "retransmissions", "r", config.DefaultRetries, "maximum number of UDP retransmissions")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", err)
		return 1
	}
	return code
}

// resolveConfig loads the config file and lets explicitly set flags win.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.AppConfig, error) {
	flags := cmd.Flags()

	appConfig, err := config.Load(opts.configPath, flags.Changed("config"))
	if err != nil {
		return nil, err
	}

	if flags.Changed("transport") {
		appConfig.Transport = opts.transport
	}
	if flags.Changed("server") {
		appConfig.Server = opts.server
	}
	if flags.Changed("port") {
		appConfig.Port = opts.port
	}
	if flags.Changed("timeout") {
		appConfig.UDPTimeoutMs = int(opts.timeout)
	}
	if flags.Changed("retransmissions") {
		appConfig.MaxRetransmissions = int(opts.retries)
	}
	if flags.Changed("metrics-addr") {
		appConfig.MetricsAddr = opts.metricsAddr
	}

	if err := appConfig.Validate(); err != nil {
		return nil, err
	}
	return appConfig, nil
}

func newDriver(appConfig *config.AppConfig, out *session.Printer, m *metrics.Metrics) Driver {
	if appConfig.Transport == config.TransportUDP {
		return udp_client.NewClient(udp_client.Config{
			Host:               appConfig.Server,
			Port:               appConfig.Port,
			Timeout:            appConfig.UDPTimeout(),
			MaxRetransmissions: appConfig.MaxRetransmissions,
		}, out, m)
	}
	return tcp_client.NewClient(appConfig.Server, appConfig.Port, out, m)
}

// serve runs one session and returns the process exit code.
func serve(appConfig *config.AppConfig, stdin io.Reader, stdout, stderr io.Writer) int {
	logCloser, err := appConfig.SetupLogger()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", err)
		return 1
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	logrus.Debug("Config loaded: ", appConfig.Render())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(appConfig.Transport)
	if appConfig.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, appConfig.MetricsAddr); err != nil {
				logrus.Errorf("Metrics server: %s", err)
			}
		}()
	}

	driver := newDriver(appConfig, session.NewPrinter(stdout, stderr), m)
	defer driver.Close()

	if err := driver.Connect(); err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", err)
		return 1
	}

	sChan := make(chan os.Signal, 1)
	// Ctrl+C and termination requests leave the server gracefully
	signal.Notify(sChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sChan)

	go func() {
		select {
		case s := <-sChan:
			logrus.Info("os.Signal ", s, " received, leaving...")
			driver.Leave()
		case <-driver.Done():
		}
	}()

	go pumpInput(stdin, driver)

	logrus.Infof("Application started, %s to %s:%d", appConfig.Transport, appConfig.Server, appConfig.Port)

	<-driver.Done()
	code := driver.ExitCode()

	logrus.Infof("Application finished with code %d", code)
	return code
}

// pumpInput feeds stdin line by line into the driver and leaves on EOF.
func pumpInput(stdin io.Reader, driver Driver) {
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 4096), 64*1024)

	for scanner.Scan() {
		select {
		case <-driver.Done():
			return
		default:
		}
		driver.Input(strings.TrimSuffix(scanner.Text(), "\r"))
	}

	if err := scanner.Err(); err != nil {
		logrus.Warnf("Error reading input: %s", err)
	}
	logrus.Info("End of input, leaving...")
	driver.Leave()
}
