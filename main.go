// Package main provides the entry point for ctxswitch.
// ctxswitch measures the latency of a context switch between two threads
// synchronising through a one-byte pipe handoff.
//
// For the measurement tool, use: go run ./cmd/measureswitch
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("ctxswitch - context switch overhead measurement")
	fmt.Println("")
	fmt.Println("Usage: measureswitch [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -n <bytes>   size of the array to work on (default 0)")
	fmt.Println("  -s <bytes>   access stride size (default 0)")
	fmt.Println("  -config      Path to run configuration JSON file")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/measureswitch' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/measureswitch' instead.")
	}
}
