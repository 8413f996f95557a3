// Command gifenc builds GIF89a animations from a JSON frame manifest and
// inspects the files it produces. It is a thin convenience wrapper around
// the gifenc library; nothing here is required to use the library itself.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gifenc",
		Short: "Build and inspect GIF89a animations",
	}
	root.AddCommand(newBuildCmd(), newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
