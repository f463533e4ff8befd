// Command insights analyzes WhatsApp chat exports from the terminal and browses
// the saved results shared with the API server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewApp().RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
