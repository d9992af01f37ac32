// Command security-cli controls a running security-server: arming, sensors,
// camera images and status watching.
package main

import "github.com/oshokin/home-security/cmd/security-cli/cmd"

func main() {
	cmd.Execute()
}
