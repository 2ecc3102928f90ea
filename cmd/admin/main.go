// Command admin is the operator CLI. It talks straight to the
// database, so moderation works even when the bot process is down.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
