// Command timex resolves recognizer date tokens the way the booking dialog does.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
