// Command qentengo-bench drives Reserver and BigInt workloads for manual
// inspection. It is a demo/benchmark harness, not part of the core
// allocator specification (spec.md §6 calls out "higher layers... outside
// this specification" as fair game for a CLI like this one).
//
// Grounded on GoogleCloudPlatform-gcsfuse/cmd/root.go for the
// cobra+viper command wiring idiom; the workloads themselves are new.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
