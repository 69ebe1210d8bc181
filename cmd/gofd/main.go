// Command gofd runs small demonstration models on the propagation kernel.
package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gofd/pkg/fd"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "gofd",
		Short: "Finite-domain propagation kernel demos",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.TraceLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable propagation tracing")
	root.AddCommand(queensCmd(), pigeonholeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func queensCmd() *cobra.Command {
	var n int
	var limit int
	cmd := &cobra.Command{
		Use:   "queens",
		Short: "Solve n-queens with bounds-consistent AllDifferent",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := fd.NewStore()
			queens := make([]*fd.IntVar, n)
			for i := range queens {
				v, err := store.NewIntVar(1, n, fmt.Sprintf("q%d", i))
				if err != nil {
					return err
				}
				queens[i] = v
			}

			ad, err := fd.NewBoundsAllDifferent(store, queens)
			if err != nil {
				return err
			}
			if err := store.AddPropagator(ad); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					for _, offset := range []int{i - j, j - i} {
						ne, err := fd.NewNotEqual(store, queens[i], queens[j], offset)
						if err != nil {
							return err
						}
						if err := store.AddPropagator(ne); err != nil {
							return err
						}
					}
				}
			}

			solutions, err := fd.NewSearch(store, queens).Solve(context.Background(), limit)
			if err != nil {
				return err
			}
			fmt.Printf("%d-queens: %d solution(s)\n", n, len(solutions))
			for _, sol := range solutions {
				fmt.Println(sol)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "size", "n", 8, "board size")
	cmd.Flags().IntVarP(&limit, "limit", "l", 1, "solution limit (0 = all)")
	return cmd
}

func pigeonholeCmd() *cobra.Command {
	var pigeons int
	cmd := &cobra.Command{
		Use:   "pigeonhole",
		Short: "Show Hall-violation failure: n variables over n-1 values",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := fd.NewStore()
			vars := make([]*fd.IntVar, pigeons)
			for i := range vars {
				v, err := store.NewIntVar(1, pigeons-1, fmt.Sprintf("p%d", i))
				if err != nil {
					return err
				}
				vars[i] = v
			}
			ad, err := fd.NewBoundsAllDifferent(store, vars)
			if err != nil {
				return err
			}
			if err := store.AddPropagator(ad); err != nil {
				return err
			}

			if err := store.Drain(); err != nil {
				fmt.Printf("infeasible, as expected: %v\n", err)
				return nil
			}
			fmt.Println("unexpectedly consistent")
			return nil
		},
	}
	cmd.Flags().IntVarP(&pigeons, "pigeons", "p", 4, "number of variables")
	return cmd
}
