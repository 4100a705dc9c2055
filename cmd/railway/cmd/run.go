package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/railwaylang/railway/pkg/railway"
)

var (
	dumpAST      bool
	trace        bool
	runBackwards bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a Railway program",
	Long: `Run a Railway program starting from its 'main' function.

Examples:
  # Run a program forwards
  railway run program.rail

  # Run a program backwards (undo it from its final state)
  railway run --backwards program.rail

  # Dump the parsed AST instead of running
  railway run --dump-ast program.rail

  # Trace every statement as it executes
  railway run --trace program.rail`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST instead of running")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace each executed statement to stderr")
	runCmd.Flags().BoolVar(&runBackwards, "backwards", false, "run the program backwards")
}

func runProgram(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	prog, err := railway.Load(string(content), filename)
	if err != nil {
		return err
	}

	if dumpAST {
		fmt.Print(prog.DumpAST())
		return nil
	}

	if err := prog.Run(runBackwards, os.Stdout, trace); err != nil {
		return err
	}
	return nil
}
