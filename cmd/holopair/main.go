// holopair pairs two devices over a network and lets their users check the
// pairing with a visual comparison.
//
// Usage:
//
//	holopair initiator [--listen :7447]
//	holopair responder [--peer host:7447]
//	holopair demo
//	holopair artifact [hex-secret]
//
// Run the initiator on one device and the responder on the other. Without
// --peer the responder finds the initiator via mDNS.
package main

import (
	"os"

	"github.com/backkem/holopair/cmd/holopair/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
