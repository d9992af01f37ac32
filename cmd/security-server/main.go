// Command security-server runs the alarm decision engine behind the gRPC,
// HTTP and MQTT surfaces.
package main

import "github.com/oshokin/home-security/cmd/security-server/cmd"

func main() {
	cmd.Execute()
}
