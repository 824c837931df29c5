package receiver_test

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ecolab/ecolab/pkg/labrpc"
	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
	"github.com/ecolab/ecolab/server/internal/auth"
	"github.com/ecolab/ecolab/server/internal/lab"
	"github.com/ecolab/ecolab/server/internal/receiver"
	"github.com/ecolab/ecolab/server/internal/store"
)

// startServer starts a gRPC server with the given interceptor on a random
// port and returns a connected client plus the backing service.
func startServer(t *testing.T, interceptor grpc.UnaryServerInterceptor) (*labrpc.Client, *lab.Service) {
	t.Helper()

	svc := lab.New(store.New(5*time.Minute, 20), quality.LocaleEN, nil, nil)

	srv := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
	labrpc.RegisterReadingServiceServer(srv, receiver.New(svc))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go srv.Serve(lis) //nolint:errcheck

	t.Cleanup(func() {
		srv.Stop()
		lis.Close()
	})

	conn, err := grpc.Dial(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	) //nolint:staticcheck
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return labrpc.NewClient(conn), svc
}

// allowAll is a no-op interceptor that passes every call through.
func allowAll(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	return handler(ctx, req)
}

func waterReading(session string, m types.Measurement) *labrpc.ReadingRequest {
	return &labrpc.ReadingRequest{SessionID: session, MeterID: "m1", Lab: types.LabWater, Water: &m}
}

var cleanWater = types.Measurement{PH: 7.2, Turbidity: 0.5, TDS: 200, Temperature: 22, DissolvedOxygen: 8.5}

func TestSubmitReading_CreatesAndGrades(t *testing.T) {
	client, svc := startServer(t, allowAll)

	resp, err := client.SubmitReading(context.Background(), waterReading("bench-1", cleanWater))
	if err != nil {
		t.Fatalf("SubmitReading: %v", err)
	}
	if !resp.OK || resp.OverallScore != 100 || !resp.Potable {
		t.Errorf("got %+v, want ok 100 potable", resp)
	}
	if resp.Classification != "Excellent" {
		t.Errorf("classification: got %q, want Excellent", resp.Classification)
	}

	s, err := svc.Get("bench-1")
	if err != nil {
		t.Fatalf("session not created: %v", err)
	}
	if s.Water.PH != 7.2 {
		t.Errorf("stored ph: got %v, want 7.2", s.Water.PH)
	}
}

func TestSubmitReading_UpdatesExistingSession(t *testing.T) {
	client, svc := startServer(t, allowAll)
	ctx := context.Background()

	if _, err := client.SubmitReading(ctx, waterReading("s", cleanWater)); err != nil {
		t.Fatalf("first: %v", err)
	}
	dirty := cleanWater
	dirty.Turbidity = 30
	resp, err := client.SubmitReading(ctx, waterReading("s", dirty))
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if resp.Potable {
		t.Error("turbidity 30 should not be potable")
	}
	if n := len(svc.List()); n != 1 {
		t.Errorf("sessions: got %d, want 1 (updates, not appends)", n)
	}
}

func TestSubmitReading_Air(t *testing.T) {
	client, _ := startServer(t, allowAll)

	air := types.AirMeasurement{CO2: 400, PM25: 10, PM10: 20, Temperature: 25, Humidity: 50}
	resp, err := client.SubmitReading(context.Background(), &labrpc.ReadingRequest{
		SessionID: "air-1", Lab: types.LabAir, Air: &air,
	})
	if err != nil {
		t.Fatalf("SubmitReading: %v", err)
	}
	if resp.AQI != "Good" || resp.Classification != "" {
		t.Errorf("got aqi=%q classification=%q, want Good and empty", resp.AQI, resp.Classification)
	}
}

func TestSubmitReading_Errors(t *testing.T) {
	client, _ := startServer(t, allowAll)
	ctx := context.Background()
	if _, err := client.SubmitReading(ctx, waterReading("water-1", cleanWater)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	air := types.AirMeasurement{CO2: 400}

	cases := []struct {
		name string
		req  *labrpc.ReadingRequest
		want codes.Code
	}{
		{"missing session", waterReading("", cleanWater), codes.InvalidArgument},
		{"unknown lab", &labrpc.ReadingRequest{SessionID: "x", Lab: "soil"}, codes.InvalidArgument},
		{"missing payload", &labrpc.ReadingRequest{SessionID: "x", Lab: types.LabWater}, codes.InvalidArgument},
		{"wrong lab", &labrpc.ReadingRequest{SessionID: "water-1", Lab: types.LabAir, Air: &air}, codes.FailedPrecondition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.SubmitReading(ctx, tc.req)
			if code := status.Code(err); code != tc.want {
				t.Errorf("code: got %v, want %v (err: %v)", code, tc.want, err)
			}
		})
	}
}

func TestSubmitReading_WithAPIKey(t *testing.T) {
	guard := auth.New("apikey", "x-api-key", "testkey")

	cases := []struct {
		name string
		key  string
		want codes.Code
	}{
		{"correct key", "testkey", codes.OK},
		{"wrong key", "wrongkey", codes.Unauthenticated},
		{"missing key", "", codes.Unauthenticated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, svc := startServer(t, guard.UnaryInterceptor())
			ctx := context.Background()
			if tc.key != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, "x-api-key", tc.key)
			}
			_, err := client.SubmitReading(ctx, waterReading("s", cleanWater))
			if code := status.Code(err); code != tc.want {
				t.Fatalf("code: got %v, want %v", code, tc.want)
			}
			wantSessions := 0
			if tc.want == codes.OK {
				wantSessions = 1
			}
			if n := len(svc.List()); n != wantSessions {
				t.Errorf("sessions: got %d, want %d", n, wantSessions)
			}
		})
	}
}
