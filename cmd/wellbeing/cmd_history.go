package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"wellbeing/internal/analytics"
	"wellbeing/internal/model"

	"github.com/spf13/cobra"
)

func newAddCmd(c *cli) *cobra.Command {
	var (
		persona   string
		happiness float64
		stress    float64
		recs      []string
		input     map[string]string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a scored assessment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.app.History.Create(cmd.Context(), model.CreatePredictionRequest{
				Input: parseInput(input),
				Output: model.Outcome{
					HappinessScore:  model.NewScore(happiness),
					StressScore:     model.NewScore(stress),
					Persona:         persona,
					Recommendations: recs,
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&persona, "persona", "", "persona label")
	cmd.Flags().Float64Var(&happiness, "happiness", 0, "happiness score")
	cmd.Flags().Float64Var(&stress, "stress", 0, "stress score")
	cmd.Flags().StringArrayVar(&recs, "rec", nil, "recommendation (repeatable)")
	cmd.Flags().StringToStringVar(&input, "input", nil, "assessment answers as key=value")
	cmd.MarkFlagRequired("persona")
	cmd.MarkFlagRequired("happiness")
	cmd.MarkFlagRequired("stress")
	return cmd
}

// parseInput keeps numeric answers numeric
func parseInput(kv map[string]string) model.Input {
	in := model.Input{}
	for k, v := range kv {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			in[k] = n
		} else {
			in[k] = v
		}
	}
	return in
}

func newListCmd(c *cli) *cobra.Command {
	var (
		persona string
		sortKey string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assessments, newest first by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records := c.app.History.List(cmd.Context(), model.Query{
				PersonaFilter: persona,
				SortKey:       analytics.ParseSortKey(sortKey),
			})
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tPERSONA\tHAPPINESS\tSTRESS")
			for _, rec := range records {
				p, _ := rec.Persona()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					rec.ID,
					c.app.Dashboard.FormatTime(rec.Timestamp).Relative,
					orDash(p),
					scoreText(rec.Happiness()),
					scoreText(rec.Stress()))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&persona, "persona", analytics.AllPersonas, "only this persona")
	cmd.Flags().StringVar(&sortKey, "sort", string(model.SortNewest), "newest, oldest, happiness or stress")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many (0 for all)")
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one assessment as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, found := c.app.History.Get(cmd.Context(), args[0])
			if !found {
				return fmt.Errorf("prediction %s not found", args[0])
			}
			enc := json.NewEncoder(out(cmd))
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := c.app.History.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(out(cmd), "Deleted %s\n", args[0])
			} else {
				fmt.Fprintf(out(cmd), "No prediction %s; nothing deleted\n", args[0])
			}
			return nil
		},
	}
}

func newClearCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "DANGER: delete the whole history and statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			if err := c.app.History.DeleteAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "History cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the history as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.app.History.Export(cmd.Context())
			if err != nil {
				return err
			}
			if path == "" || path == "-" {
				_, err = out(cmd).Write(append(data, '\n'))
				return err
			}
			return os.WriteFile(path, data, 0600)
		},
	}
	cmd.Flags().StringVarP(&path, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the history with a JSON array export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			n, err := c.app.History.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Imported %d records\n", n)
			return nil
		},
	}
}

func scoreText(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
