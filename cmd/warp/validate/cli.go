package validate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gowasm/toolkit/load"
	"github.com/gowasm/toolkit/wasm/validate"
)

func Command() *cobra.Command {
	var skipCode bool

	command := &cobra.Command{
		Use:   "validate [path to module]...",
		Short: "Validate WebAssembly modules",
		Long:  "Decode and validate one or more binary WebAssembly modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("expected at least one argument")
			}

			failed := false
			for _, path := range args {
				if err := validateFile(path, !skipCode); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed = true
					continue
				}
				fmt.Fprintf(os.Stdout, "%s: ok\n", path)
			}
			if failed {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	command.PersistentFlags().BoolVar(&skipCode, "skip-code", false, "skip validation of function bodies")

	return command
}

func validateFile(path string, validateCode bool) error {
	m, err := load.LoadFile(path)
	if err != nil {
		return err
	}
	return validate.ValidateModule(m, validateCode)
}
