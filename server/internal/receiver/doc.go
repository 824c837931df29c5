// Package receiver implements labrpc.ReadingServiceServer, the gRPC endpoint
// that accepts meter readings from ecolab-meter instances.
//
// Receiver.SubmitReading hands each reading to the lab service, which creates
// the session on first contact, grades the reading and feeds metrics and
// alerting. Validation failures map to codes.InvalidArgument and a reading
// for the other lab maps to codes.FailedPrecondition. Authentication is
// enforced upstream by the gRPC server interceptor (see package auth).
//
// New(svc) wires the receiver to the given lab service.
package receiver
