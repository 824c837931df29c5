// Package labrpc defines the ReadingService used by ecolab meters to push
// readings to ecolab-server over gRPC.
//
// Messages are plain Go structs carried by a JSON codec registered under the
// "json" content-subtype, so no generated protobuf code is needed. Servers
// register an implementation with RegisterReadingServiceServer; clients wrap
// a *grpc.ClientConn with NewClient.
package labrpc
