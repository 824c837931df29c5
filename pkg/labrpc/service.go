package labrpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ecolab/ecolab/pkg/types"
)

const (
	ServiceName         = "ecolab.v1.ReadingService"
	SubmitReadingMethod = "/" + ServiceName + "/SubmitReading"
)

// ReadingRequest carries one meter reading for a lab session.
// Exactly one of Water or Air is expected, matching Lab.
type ReadingRequest struct {
	SessionID string                `json:"session_id"`
	MeterID   string                `json:"meter_id,omitempty"`
	Lab       types.Lab             `json:"lab"`
	Water     *types.Measurement    `json:"water,omitempty"`
	Air       *types.AirMeasurement `json:"air,omitempty"`
}

// ReadingResponse reports how the server graded the reading.
type ReadingResponse struct {
	OK             bool   `json:"ok"`
	Message        string `json:"message,omitempty"`
	Classification string `json:"classification,omitempty"`
	OverallScore   int    `json:"overall_score"`
	Potable        bool   `json:"potable"`
	AQI            string `json:"aqi,omitempty"`
}

// ReadingServiceServer is the server API for ReadingService.
type ReadingServiceServer interface {
	SubmitReading(context.Context, *ReadingRequest) (*ReadingResponse, error)
}

// RegisterReadingServiceServer registers srv on s.
func RegisterReadingServiceServer(s grpc.ServiceRegistrar, srv ReadingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func submitReadingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReadingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReadingServiceServer).SubmitReading(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SubmitReadingMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReadingServiceServer).SubmitReading(ctx, req.(*ReadingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for ReadingService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReadingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitReading",
			Handler:    submitReadingHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ecolab/v1/reading",
}

// Client calls ReadingService over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc. The JSON content-subtype is set on every call.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// SubmitReading sends one reading and returns the server's grading.
func (c *Client) SubmitReading(ctx context.Context, in *ReadingRequest, opts ...grpc.CallOption) (*ReadingResponse, error) {
	out := new(ReadingResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, SubmitReadingMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
