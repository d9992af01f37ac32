// Package securityv1 defines the security.v1.SecurityService wire contract:
// request and response messages, the security/v1/security.proto descriptor
// registered in the global protobuf registry, and the gRPC service descriptor.
// Messages travel as standard protobuf through the default gRPC codec.
package securityv1
