package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/strata-lang/strata/internal/eval"
	"github.com/strata-lang/strata/internal/hostlib"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/irtext"
	"github.com/strata-lang/strata/internal/jsonout"
	"github.com/strata-lang/strata/internal/obslog"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/solver"
)

var (
	factsPath  string
	jsonOutput bool
)

var saturateCmd = &cobra.Command{
	Use:   "saturate <file.strata>",
	Short: "Saturate a stratified program to its fixed point and print every table",
	Args:  cobra.ExactArgs(1),
	RunE:  runSaturate,
}

func init() {
	saturateCmd.Flags().StringVar(&factsPath, "facts", "", "optional separate file contributing extra initial facts")
	saturateCmd.Flags().BoolVar(&jsonOutput, "json", false, "print every table as JSON instead of plain text")
	rootCmd.AddCommand(saturateCmd)
}

func runSaturate(_ *cobra.Command, args []string) error {
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	paths := []string{file}
	if factsPath != "" {
		paths = append(paths, factsPath)
	}
	root, facts, err := irtext.ReadFiles(file, paths)
	if err != nil {
		return reportErr(err, string(src))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	linker := runtimeenv.NewLinker()
	hostlib.Register(linker)
	ev := eval.New(root, linker)

	engine, err := solver.New(root, ev, cfg.MaxStratumIterations)
	if err != nil {
		return reportErr(err, string(src))
	}
	if verbose {
		logger, err := obslog.New(true)
		if err != nil {
			return err
		}
		engine.Logger = logger
	}

	if err := engine.Saturate(context.Background(), facts); err != nil {
		return reportErr(err, string(src))
	}

	if jsonOutput {
		out, err := jsonout.RenderTables(root, engine.Stores)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	return printTables(root, engine.Stores)
}

func printTables(root *ir.Root, stores *solver.Stores) error {
	tables := root.Tables()
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	for _, t := range tables {
		var rows []string
		switch t.Kind {
		case ir.TableRelation:
			st, ok := stores.Relation(t.Sym)
			if !ok {
				continue
			}
			for _, tup := range st.Scan() {
				rows = append(rows, tup.String())
			}
		case ir.TableLattice:
			st, ok := stores.Lattice(t.Sym)
			if !ok {
				continue
			}
			for _, entry := range st.Scan() {
				rows = append(rows, entry.Key.String()+" -> "+entry.Value.String())
			}
		}
		sort.Strings(rows)
		fmt.Printf("%s:\n", t.Name)
		for _, r := range rows {
			fmt.Printf("  %s\n", r)
		}
	}
	return nil
}
