package receiver

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ecolab/ecolab/pkg/labrpc"
	"github.com/ecolab/ecolab/pkg/types"
	"github.com/ecolab/ecolab/server/internal/lab"
	"github.com/ecolab/ecolab/server/internal/store"
)

// Receiver implements labrpc.ReadingServiceServer.
type Receiver struct {
	svc *lab.Service
}

// New creates a Receiver that submits accepted readings to svc.
func New(svc *lab.Service) *Receiver {
	return &Receiver{svc: svc}
}

// SubmitReading is the unary RPC handler called by meter agents.
func (r *Receiver) SubmitReading(ctx context.Context, req *labrpc.ReadingRequest) (*labrpc.ReadingResponse, error) {
	sess, err := r.svc.Submit(req)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &labrpc.ReadingResponse{OK: true}
	switch sess.Lab {
	case types.LabAir:
		resp.AQI = sess.AirResult.Level.String()
		resp.Message = sess.AirResult.LevelLabel
	default:
		res := sess.WaterResult
		resp.Classification = res.Classification.String()
		resp.OverallScore = res.OverallScore
		resp.Potable = res.Potable
		resp.Message = res.ClassificationLabel
	}

	slog.Debug("receiver: reading stored",
		"session", req.SessionID,
		"meter", req.MeterID,
		"lab", sess.Lab,
		"score", resp.OverallScore,
		"aqi", resp.AQI,
	)
	return resp, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, lab.ErrMissingSession),
		errors.Is(err, lab.ErrInvalidLab),
		errors.Is(err, lab.ErrMissingPayload),
		errors.Is(err, lab.ErrInvalidMeasurement):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, lab.ErrWrongLab):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		slog.Error("receiver: submit failed", "error", err)
		return status.Error(codes.Internal, "submit reading failed")
	}
}
