package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/strata-lang/strata/internal/diag"
	"github.com/strata-lang/strata/internal/eval"
	"github.com/strata-lang/strata/internal/hostlib"
	"github.com/strata-lang/strata/internal/ierrors"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/irtext"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

var evalCmd = &cobra.Command{
	Use:   "eval <file.strata> <defName> [args...]",
	Short: "Evaluate one definition and print its result",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func runEval(_ *cobra.Command, args []string) error {
	file, defName, rest := args[0], args[1], args[2:]

	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	root, _, err := irtext.ReadString(file, file, string(src))
	if err != nil {
		return reportErr(err, string(src))
	}

	def, ok := findDefinition(root, defName)
	if !ok {
		return fmt.Errorf("no definition named %q in %s", defName, file)
	}
	if len(rest) != len(def.Formals) {
		return fmt.Errorf("%s expects %d argument(s), got %d", defName, len(def.Formals), len(rest))
	}

	linker := runtimeenv.NewLinker()
	hostlib.Register(linker)
	ev := eval.New(root, linker)

	env := runtimeenv.NewEnv()
	for i, formal := range def.Formals {
		v, err := parseArgValue(rest[i])
		if err != nil {
			return err
		}
		env = env.Extend(formal.Offset, v)
	}

	result, err := ev.Evaluate(def.Body, env)
	if err != nil {
		return reportErr(err, string(src))
	}
	fmt.Println(result.String())
	return nil
}

func findDefinition(root *ir.Root, name string) (*ir.Definition, bool) {
	for _, d := range root.Definitions() {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// parseArgValue interprets one command-line argument as a runtime Value:
// a quoted string stays a Str, "true"/"false" become Bool, anything that
// parses as an integer or float becomes Int32/Float64, and anything else
// is treated as a bare Str.
func parseArgValue(raw string) (value.Value, error) {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return value.Str(raw[1 : len(raw)-1]), nil
	}
	switch raw {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	}
	if n, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return value.Int32(n), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return value.Float64(f), nil
	}
	return value.Str(raw), nil
}

// reportErr formats a core *ierrors.Error with source-excerpt diagnostics;
// any other error (parse failure, I/O) is returned unchanged for cobra's
// default error printing.
func reportErr(err error, source string) error {
	var ierr *ierrors.Error
	if errors.As(err, &ierr) {
		return fmt.Errorf("%s", diag.Format(ierr, source))
	}
	return err
}
