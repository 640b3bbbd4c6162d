package commands

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sparkplug-edge/edge-client/internal/eventbus"
	"github.com/sparkplug-edge/edge-client/pkg/config"
	"github.com/sparkplug-edge/edge-client/pkg/metric"
	"github.com/sparkplug-edge/edge-client/pkg/session"
	"github.com/sparkplug-edge/edge-client/pkg/transport"
)

var (
	flagGops           bool
	flagPublishRate    float64
	flagPublishBurst   int
	flagEventBusAddr   string
	flagEventBusSubj   string
	flagReportInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bring a Node online and run until interrupted",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagGops, "gops", false, "listen via github.com/google/gops/agent for live diagnostics")
	runCmd.Flags().Float64Var(&flagPublishRate, "publish-rate", 0, "max DATA publishes per second (0 = unlimited)")
	runCmd.Flags().IntVar(&flagPublishBurst, "publish-burst", 1, "burst size for --publish-rate")
	runCmd.Flags().StringVar(&flagEventBusAddr, "eventbus-addr", "", "NATS address for session lifecycle events (empty disables)")
	runCmd.Flags().StringVar(&flagEventBusSubj, "eventbus-subject", "edgenode.events", "subject to publish lifecycle events on")
	runCmd.Flags().DurationVar(&flagReportInterval, "report-interval", 5*time.Second, "interval between demo-metric DATA publishes")
}

func runRun(cmd *cobra.Command, args []string) error {
	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fmt.Errorf("gops agent: %w", err)
		}
		Logger.Info("gops diagnostics agent listening")
	}

	cfg, err := config.LoadYAML(cfgFile)
	if err != nil {
		return err
	}

	if err := promptMissingPasswords(cfg); err != nil {
		return err
	}

	metrics := session.NewMetrics(prometheus.NewRegistry())

	opts := []session.NodeOption{session.WithMetrics(metrics)}
	if flagPublishRate > 0 {
		opts = append(opts, session.WithPublishRateLimit(flagPublishRate, flagPublishBurst))
	}
	if flagEventBusAddr != "" {
		pub, err := eventbus.Connect(eventbus.Config{Address: flagEventBusAddr, Subject: flagEventBusSubj})
		if err != nil {
			return err
		}
		defer pub.Close()
		opts = append(opts, session.WithEventBus(pub))
	}

	node, err := session.NewNode(*cfg, mqttTransportFactory, session.SystemClock{}, opts...)
	if err != nil {
		return err
	}

	counter, err := node.AttachMetric("Inputs/Counter", metric.Int64, int64(0))
	if err != nil {
		return err
	}
	hostname, _ := os.Hostname()
	if _, err := node.AttachMetric("Properties/Hostname", metric.String, hostname); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := node.Online(ctx); err != nil {
		return err
	}
	Logger.Infof("node %s/%s starting", cfg.GroupID, cfg.EdgeNodeID)

	ticker := time.NewTicker(flagReportInterval)
	defer ticker.Stop()

	var n int64
	for {
		select {
		case <-ctx.Done():
			Logger.Info("shutting down")
			node.Offline()
			return nil
		case <-ticker.C:
			n++
			if err := counter.ChangeValue(n, 0); err != nil {
				Logger.Warnf("change counter value: %v", err)
				continue
			}
			if err := node.SendData(ctx, nil, true); err != nil {
				Logger.Warnf("send data: %v", err)
			}
		}
	}
}

// mqttTransportFactory adapts an EndpointConfig into an MQTTTransport,
// following the teacher's pattern of building a fresh transport per
// endpoint rather than mutating one in place (see TransportFactory's doc
// comment in pkg/session/node.go).
func mqttTransportFactory(ep config.EndpointConfig) transport.Transport {
	scheme := "tcp"
	var tlsConfig *tls.Config
	if ep.TLSEnabled {
		scheme = "ssl"
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if ep.CACerts != "" {
			pool := x509.NewCertPool()
			if pem, err := os.ReadFile(ep.CACerts); err == nil {
				pool.AppendCertsFromPEM(pem)
				tlsConfig.RootCAs = pool
			}
		}
		if ep.CertFile != "" && ep.KeyFile != "" {
			if cert, err := tls.LoadX509KeyPair(ep.CertFile, ep.KeyFile); err == nil {
				tlsConfig.Certificates = []tls.Certificate{cert}
			}
		}
	}

	return transport.NewMQTTTransport(transport.MQTTOptions{
		Servers:          []string{fmt.Sprintf("%s://%s:%d", scheme, ep.Server, ep.Port)},
		ClientID:         ep.ClientID,
		Username:         ep.Username,
		Password:         ep.Password,
		TLSConfig:        tlsConfig,
		AutoReconnect:    true,
		KeepAliveSeconds: ep.KeepaliveSeconds,
	})
}

// promptMissingPasswords fills in any endpoint's Password field that was
// left blank in the config file, reading from the controlling terminal
// without echo (dittofs's promptPassword pattern in cmd/dittofs/commands/user.go).
func promptMissingPasswords(cfg *config.NodeConfig) error {
	for i := range cfg.Endpoints {
		ep := &cfg.Endpoints[i]
		if ep.Username == "" || ep.Password != "" {
			continue
		}
		fmt.Printf("password for %s@%s: ", ep.Username, ep.Server)
		if term.IsTerminal(int(syscall.Stdin)) {
			pw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return err
			}
			ep.Password = string(pw)
			continue
		}
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		ep.Password = strings.TrimSpace(line)
	}
	return nil
}
