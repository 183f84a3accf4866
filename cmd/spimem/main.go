// Command spimem reads, verifies and erases SPI NOR flash chips.
//
// Usage:
//
//	spimem detect
//	spimem read dump.bin
//	spimem verify dump.bin
//	spimem erase
//
// Use --simulate to run against an in-memory chip.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
