package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// printMarkdown renders md for the terminal. When rendering fails the raw
// markdown is printed instead, it is still readable.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: cannot render markdown:", err)
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
