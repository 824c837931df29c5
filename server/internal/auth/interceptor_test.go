package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// passHandler is a grpc.UnaryHandler that returns ("ok", nil).
func passHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return "ok", nil
}

func callWithKey(t *testing.T, interceptor grpc.UnaryServerInterceptor, header, key string) (interface{}, error) {
	t.Helper()
	ctx := context.Background()
	if key != "" {
		ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(header, key))
	}
	return interceptor(ctx, nil, &grpc.UnaryServerInfo{}, passHandler)
}

func TestUnaryInterceptor(t *testing.T) {
	cases := []struct {
		name      string
		mode      string
		configKey string
		header    string
		sentKey   string
		want      codes.Code
	}{
		{"mode none passes", "none", "secret", "x-api-key", "", codes.OK},
		{"empty key passes", "apikey", "", "x-api-key", "", codes.OK},
		{"correct key", "apikey", "supersecret", "x-api-key", "supersecret", codes.OK},
		{"wrong key", "apikey", "supersecret", "x-api-key", "wrong", codes.Unauthenticated},
		{"no metadata", "apikey", "supersecret", "x-api-key", "", codes.Unauthenticated},
		{"custom header", "apikey", "mytoken", "x-lab-token", "mytoken", codes.OK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			i := New(tc.mode, tc.header, tc.configKey).UnaryInterceptor()
			res, err := callWithKey(t, i, tc.header, tc.sentKey)
			if code := status.Code(err); code != tc.want {
				t.Fatalf("code: got %v, want %v", code, tc.want)
			}
			if tc.want == codes.OK && res != "ok" {
				t.Errorf("result: got %v, want ok", res)
			}
		})
	}
}

func TestUnaryInterceptor_MissingHeader(t *testing.T) {
	i := New("apikey", "x-api-key", "supersecret").UnaryInterceptor()
	ctx := metadata.NewIncomingContext(context.Background(), metadata.MD{})
	if _, err := i(ctx, nil, &grpc.UnaryServerInfo{}, passHandler); status.Code(err) != codes.Unauthenticated {
		t.Errorf("code: got %v, want Unauthenticated", status.Code(err))
	}
}

func TestUnaryInterceptor_MixedCaseHeader(t *testing.T) {
	i := New("apikey", "X-API-Key", "k").UnaryInterceptor()
	if _, err := callWithKey(t, i, "x-api-key", "k"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	cases := []struct {
		name   string
		guard  Guard
		method string
		key    string
		want   int
	}{
		{"disabled allows writes", New("none", "X-API-Key", "k"), http.MethodPost, "", http.StatusTeapot},
		{"get needs no key", New("apikey", "X-API-Key", "k"), http.MethodGet, "", http.StatusTeapot},
		{"head needs no key", New("apikey", "X-API-Key", "k"), http.MethodHead, "", http.StatusTeapot},
		{"post without key", New("apikey", "X-API-Key", "k"), http.MethodPost, "", http.StatusUnauthorized},
		{"put wrong key", New("apikey", "X-API-Key", "k"), http.MethodPut, "nope", http.StatusUnauthorized},
		{"put correct key", New("apikey", "X-API-Key", "k"), http.MethodPut, "k", http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/v1/sessions", nil)
			if tc.key != "" {
				req.Header.Set("x-api-key", tc.key)
			}
			rr := httptest.NewRecorder()
			tc.guard.Middleware(next).ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	if New("none", "h", "k").Enabled() {
		t.Error("mode none should be disabled")
	}
	if New("apikey", "h", "").Enabled() {
		t.Error("empty key should be disabled")
	}
	if !New("apikey", "h", "k").Enabled() {
		t.Error("apikey with key should be enabled")
	}
}
