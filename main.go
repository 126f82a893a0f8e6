package main

import (
	"fmt"
	"os"
)

// -------------------- MAIN --------------------

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
