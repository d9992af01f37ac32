//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"

	"google.golang.org/grpc/metadata"
)

// ActorMetadataKey is the gRPC metadata key carrying the request actor.
const ActorMetadataKey = "x-security-actor"

// Actor identifies who sent a request.
type Actor struct {
	// Hostname is the machine the request came from.
	Hostname string
	// Username is the operating system user.
	Username string
}

// String formats the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return ""
	}

	return a.Username + "@" + a.Hostname
}

// ParseActor parses a user@host string produced by Actor.String.
func ParseActor(s string) (*Actor, bool) {
	username, hostname, ok := strings.Cut(s, "@")
	if !ok || username == "" || hostname == "" {
		return nil, false
	}

	return &Actor{
		Hostname: hostname,
		Username: username,
	}, true
}

// DetectActor gathers host and user information for the audit trail.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}

// ActorFromIncomingContext extracts the actor sent by a client, if any.
func ActorFromIncomingContext(ctx context.Context) (*Actor, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, false
	}

	values := md.Get(ActorMetadataKey)
	if len(values) == 0 {
		return nil, false
	}

	return ParseActor(values[0])
}

// withActor attaches the actor to outgoing request metadata.
func withActor(ctx context.Context, actor *Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, actor.String())
}
