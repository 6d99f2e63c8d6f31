package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	_ "github.com/mtibben/androiddnsfix"
	"github.com/nojima/ht"
	"github.com/pkg/errors"
)

func main() {
	if err := httpie.Main(&httpie.Options{}); err != nil {
		var statusErr *httpie.StatusError
		if errors.As(err, &statusErr) {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.YellowString("WARNING:"), err)
			os.Exit(statusErr.ExitStatus())
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("ERROR:"), err)
		os.Exit(1)
	}
}
