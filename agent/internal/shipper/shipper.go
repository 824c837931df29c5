package shipper

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ecolab/ecolab/agent/internal/config"
	"github.com/ecolab/ecolab/pkg/labrpc"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
	backoffJitter     = 0.25
	sendTimeout       = 10 * time.Second
)

// Shipper buffers readings and ships them to ecolab-server via gRPC.
// Ship() is non-blocking; when the buffer is full the oldest reading is evicted.
// Run() must be called in a goroutine to drain the buffer and handle reconnection.
type Shipper struct {
	cfg    config.AgentConfig
	buf    chan *labrpc.ReadingRequest
	dialFn dialFunc // injectable for tests
}

// dialFunc is the function signature used to open a gRPC connection.
type dialFunc func(ctx context.Context, endpoint string, cfg config.AgentConfig) (*grpc.ClientConn, error)

// New creates a Shipper using the given agent config.
func New(cfg config.AgentConfig) *Shipper {
	size := cfg.BufferSize
	if size <= 0 {
		size = config.DefaultBufferSize
	}
	return &Shipper{
		cfg:    cfg,
		buf:    make(chan *labrpc.ReadingRequest, size),
		dialFn: defaultDial,
	}
}

// Ship enqueues a reading. If the buffer is full the oldest entry is evicted
// to make room.
func (s *Shipper) Ship(req *labrpc.ReadingRequest) {
	select {
	case s.buf <- req:
	default:
		select {
		case old := <-s.buf:
			slog.Warn("shipper: buffer full, evicted oldest reading",
				"session", old.SessionID, "buffer_cap", cap(s.buf))
		default:
		}
		// Another Ship may have refilled the slot; drop rather than block.
		select {
		case s.buf <- req:
		default:
		}
	}
}

// Pending returns the number of buffered readings.
func (s *Shipper) Pending() int {
	return len(s.buf)
}

// Run drains the buffer, sending readings to the server.
// It reconnects with exponential backoff when the connection is lost.
// Run blocks until ctx is cancelled.
func (s *Shipper) Run(ctx context.Context) {
	bo := newBackOff()

	for ctx.Err() == nil {
		var conn *grpc.ClientConn
		err := backoff.RetryNotify(func() error {
			c, err := s.dialFn(ctx, s.cfg.ServerEndpoint, s.cfg)
			if err != nil {
				return err
			}
			conn = c
			return nil
		}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
			slog.Error("shipper: dial failed, will retry",
				"endpoint", s.cfg.ServerEndpoint,
				"err", err,
				"retry_in", wait)
		})
		if err != nil {
			return // only a cancelled context ends the retry
		}

		slog.Info("shipper: connected", "endpoint", s.cfg.ServerEndpoint)
		bo.Reset()

		err = s.drain(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			return
		}

		wait := bo.NextBackOff()
		slog.Warn("shipper: connection lost, will reconnect",
			"endpoint", s.cfg.ServerEndpoint,
			"err", err,
			"retry_in", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// newBackOff returns an exponential policy that never gives up on its own.
func newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = backoffInitial
	bo.MaxInterval = backoffMax
	bo.Multiplier = backoffMultiplier
	bo.RandomizationFactor = backoffJitter
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// drain reads from the buffer and sends readings until the connection fails
// or ctx is cancelled.
func (s *Shipper) drain(ctx context.Context, conn *grpc.ClientConn) error {
	client := labrpc.NewClient(conn)

	for {
		select {
		case <-ctx.Done():
			return nil

		case req := <-s.buf:
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)

			if s.cfg.ServerAuth.Mode == "apikey" && s.cfg.ServerAuth.KeyEnv != "" {
				sendCtx = metadata.AppendToOutgoingContext(
					sendCtx,
					s.cfg.ServerAuth.EffectiveHeader(), s.cfg.ServerAuth.Key(),
				)
			}

			resp, err := client.SubmitReading(sendCtx, req)
			cancel()

			if err != nil {
				if isPermanentError(err) {
					slog.Error("shipper: permanent send error, discarding reading",
						"session", req.SessionID, "err", err)
					continue
				}
				// Requeue if there's room; the next tick produces a fresh reading anyway.
				select {
				case s.buf <- req:
				default:
				}
				return fmt.Errorf("send: %w", err)
			}

			if !resp.OK {
				slog.Warn("shipper: server rejected reading",
					"session", req.SessionID, "message", resp.Message)
				continue
			}
			slog.Debug("shipper: reading delivered",
				"session", req.SessionID,
				"classification", resp.Classification,
				"score", resp.OverallScore,
				"aqi", resp.AQI)
		}
	}
}

// isPermanentError returns true for gRPC errors that indicate the reading
// itself is unacceptable and should not be retried.
func isPermanentError(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied, codes.FailedPrecondition:
		return true
	}
	return false
}

// defaultDial opens a gRPC connection to endpoint with auth configured from cfg.
func defaultDial(ctx context.Context, endpoint string, cfg config.AgentConfig) (*grpc.ClientConn, error) {
	opts, err := dialOptions(cfg)
	if err != nil {
		return nil, err
	}
	return grpc.DialContext(ctx, endpoint, opts...) //nolint:staticcheck // DialContext kept for grpc <1.63 compat
}

// dialOptions builds grpc.DialOption slice based on the server auth config.
func dialOptions(cfg config.AgentConfig) ([]grpc.DialOption, error) {
	if cfg.ServerAuth.Mode == "mtls" {
		creds, err := buildMTLSCreds(cfg.ServerAuth)
		if err != nil {
			return nil, fmt.Errorf("shipper: build mtls creds: %w", err)
		}
		return []grpc.DialOption{grpc.WithTransportCredentials(creds)}, nil
	}
	// apikey sends the key per call; none is plaintext for local labs.
	return []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, nil
}

// buildMTLSCreds loads client certificate and optional CA from the auth config.
func buildMTLSCreds(auth config.AuthConfig) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(auth.CertFile, auth.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load client cert: %w", err)
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
	}

	if auth.CAFile != "" {
		caPEM, err := os.ReadFile(auth.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no valid certs in ca file %q", auth.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	return credentials.NewTLS(tlsCfg), nil
}
