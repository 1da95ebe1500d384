package text

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gowasm/toolkit/load"
	"github.com/gowasm/toolkit/wast"
)

func Command() *cobra.Command {
	command := &cobra.Command{
		Use:   "text [path to module]...",
		Short: "Print WebAssembly modules as text",
		Long:  "Decode one or more binary WebAssembly modules and print their canonical text form",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("expected at least one argument")
			}

			failed := false
			for _, path := range args {
				if err := printText(path); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("conversion failed")
			}
			return nil
		},
	}

	return command
}

func printText(path string) error {
	m, err := load.LoadFile(path)
	if err != nil {
		return err
	}
	return wast.WriteTo(os.Stdout, m)
}
