package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"goeda/domain/dataset"
	"goeda/domain/stats"
	"goeda/internal/analysis"
	"goeda/internal/annotations"
	ingest "goeda/internal/dataset"
	"goeda/internal/errors"
	"goeda/internal/profiling"
	"goeda/internal/report"
)

func newInferCmd() *cobra.Command {
	var write string
	cmd := &cobra.Command{
		Use:   "infer FILE",
		Short: "Infer column types and optionally write them as an annotations file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := rt.loader.Load(args[0])
			if err != nil {
				return err
			}
			types := profiling.InferColumnTypes(frame)

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, frame.Data.Cols())
			for _, name := range frame.Data.Names() {
				rows = append(rows, []string{name, string(types[name].Type)})
			}
			printTable(out, []string{"column", "type"}, rows)

			if write == "" {
				return nil
			}
			return writeAnnotations(write, annotations.FromTypeMap(frame.Data, types))
		},
	}
	cmd.Flags().StringVar(&write, "write", "", "write the inferred types to this annotations file (.yaml, .toml or .json)")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var annotationsPath string
	cmd := &cobra.Command{
		Use:   "describe FILE",
		Short: "Summary statistics and distribution profiles per column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, types, err := loadWithTypes(args[0], annotationsPath)
			if err != nil {
				return err
			}
			profile, err := rt.profiler.ProfileDataset(frame, types)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&annotationsPath, "annotations", "", "column type declarations (.yaml, .toml or .json)")
	return cmd
}

func newRelationshipsCmd() *cobra.Command {
	var (
		annotationsPath string
		threshold       float64
		strict          bool
		asJSON          bool
	)
	cmd := &cobra.Command{
		Use:   "relationships FILE",
		Short: "Correlations, group comparisons and independence tests between columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, types, err := loadWithTypes(args[0], annotationsPath)
			if err != nil {
				return err
			}
			engine := rt.engine(threshold, strict)
			rel, err := computeRelationships(engine, frame, types)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rel)
			}
			printRelationships(out, rel)
			return nil
		},
	}
	cmd.Flags().StringVar(&annotationsPath, "annotations", "", "column type declarations (.yaml, .toml or .json)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "strong correlation threshold (default from config)")
	cmd.Flags().BoolVar(&strict, "strict-ordinal", false, "reject ordinal columns holding undeclared values")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw results as JSON")
	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		annotationsPath string
		format          string
		output          string
		threshold       float64
		strict          bool
	)
	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Full profiling and relationship report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := rt.loader.Load(args[0])
			if err != nil {
				return err
			}
			var declared dataset.TypeMap
			if annotationsPath != "" {
				if declared, err = annotations.Load(annotationsPath); err != nil {
					return err
				}
			}

			svc := rt.reportService(rt.engine(threshold, strict))
			rep, err := svc.Build(context.Background(), frame, declared)
			if err != nil {
				return err
			}
			body, err := renderReport(rep, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write report to %s", output)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("report written to "+output))
			return nil
		},
	}
	cmd.Flags().StringVar(&annotationsPath, "annotations", "", "column type declarations (.yaml, .toml or .json)")
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown, html or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "strong correlation threshold (default from config)")
	cmd.Flags().BoolVar(&strict, "strict-ordinal", false, "reject ordinal columns holding undeclared values")
	return cmd
}

// relationships is the output of the relationships command
type relationships struct {
	Correlations *stats.CorrelationResult  `json:"correlations,omitempty"`
	Groups       []stats.GroupTestResult   `json:"groups"`
	Independence []stats.ContingencyResult `json:"independence"`
	Skipped      []string                  `json:"skipped,omitempty"`
}

func computeRelationships(engine *analysis.Engine, frame *ingest.Frame, types dataset.TypeMap) (*relationships, error) {
	ds := frame.Data
	rel := &relationships{}

	if cols := analysis.CorrelatableColumns(ds, types); len(cols) >= 2 {
		res, err := engine.ComputeCorrelations(ds, cols, types.OrdinalOrders())
		if err != nil {
			return nil, errors.AnalysisFailed("correlation", err)
		}
		rel.Correlations = res
	} else {
		rel.Skipped = append(rel.Skipped, "correlations: fewer than two numeric or ordinal columns")
	}

	groups, err := engine.CompareGroups(ds, types)
	if err != nil {
		return nil, errors.AnalysisFailed("group comparison", err)
	}
	rel.Groups = groups

	if cols := types.ColumnsOfType(ds, dataset.TypeCategorical); len(cols) >= 2 {
		res, err := engine.TestCategoricalIndependence(ds, cols)
		if err != nil {
			return nil, errors.AnalysisFailed("independence", err)
		}
		rel.Independence = res
	} else {
		rel.Skipped = append(rel.Skipped, "independence: fewer than two categorical columns")
	}
	return rel, nil
}

func loadWithTypes(path, annotationsPath string) (*ingest.Frame, dataset.TypeMap, error) {
	frame, err := rt.loader.Load(path)
	if err != nil {
		return nil, nil, err
	}
	var declared dataset.TypeMap
	if annotationsPath != "" {
		if declared, err = annotations.Load(annotationsPath); err != nil {
			return nil, nil, err
		}
	}
	svc := rt.reportService(rt.engine(0, false))
	types, err := svc.ResolveTypes(frame, declared)
	if err != nil {
		return nil, nil, err
	}
	return frame, types, nil
}

func writeAnnotations(path string, file annotations.File) error {
	format, err := annotations.FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()
	if err := file.Encode(f, format); err != nil {
		return err
	}
	rt.logger.Info("wrote annotations to %s", path)
	return nil
}

func renderReport(rep *report.Report, format string) ([]byte, error) {
	switch format {
	case "markdown", "md":
		md, err := report.Markdown(rep)
		return []byte(md), err
	case "html":
		return report.HTML(rep)
	case "json":
		body, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode report")
		}
		return append(body, '\n'), nil
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown report format %q", format))
	}
}

func printProfile(w io.Writer, p *profiling.DatasetProfile) {
	fmt.Fprintln(w, titleStyle.Render("Descriptive Statistics"))
	rows := make([][]string, 0, len(p.Summary))
	for _, s := range p.Summary {
		if s.Numeric {
			rows = append(rows, []string{s.Column, strconv.Itoa(s.Count), num(s.Mean), num(s.Std),
				num(s.Min), num(s.Q25), num(s.Median), num(s.Q75), num(s.Max), "", "", ""})
			continue
		}
		rows = append(rows, []string{s.Column, strconv.Itoa(s.Count), "", "", "", "", "", "", "",
			strconv.Itoa(s.Unique), s.Top, strconv.Itoa(s.Freq)})
	}
	printTable(w, []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max", "unique", "top", "freq"}, rows)

	if len(p.Numeric) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render("Distributions"))
		rows = rows[:0]
		for _, n := range p.Numeric {
			rows = append(rows, []string{n.Column, num(n.Skewness), num(n.Kurtosis)})
		}
		printTable(w, []string{"column", "skewness", "kurtosis"}, rows)
	}

	for _, c := range p.Categorical {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render("Value counts: "+c.Column))
		rows = rows[:0]
		for _, v := range c.Values {
			rows = append(rows, []string{v.Value, strconv.Itoa(v.Count), fmt.Sprintf("%.2f%%", v.Percentage)})
		}
		printTable(w, []string{"value", "count", "percent"}, rows)
	}

	for _, d := range p.Datetime {
		fmt.Fprintln(w)
		if d.Err != nil {
			fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%s: %v", d.Column, d.Err)))
			continue
		}
		fmt.Fprintf(w, "%s: %s to %s (%s)\n", d.Column,
			d.Earliest.Format("2006-01-02 15:04:05"), d.Latest.Format("2006-01-02 15:04:05"), d.Range)
	}
}

func printRelationships(w io.Writer, rel *relationships) {
	if rel.Correlations != nil {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Strong correlations (|r| > %.2f)", rel.Correlations.Threshold)))
		if len(rel.Correlations.StrongPairs) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("none"))
		}
		for _, p := range rel.Correlations.StrongPairs {
			fmt.Fprintln(w, report.CorrelationLine(p))
		}
		for _, enc := range rel.Correlations.Encodings {
			if len(enc.Unmapped) > 0 || enc.Rejected {
				fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%s: unmapped ordinal values %v", enc.Column, enc.Unmapped)))
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, titleStyle.Render("Numeric - Categorical"))
	rows := make([][]string, 0, len(rel.Groups))
	for _, g := range rel.Groups {
		if g.Err != nil {
			rows = append(rows, []string{g.CategoricalColumn, g.NumericColumn, "not tested", "", "", g.Err.Error()})
			continue
		}
		rows = append(rows, []string{g.CategoricalColumn, g.NumericColumn, string(g.Test),
			num(g.Statistic), num(g.PValue), sortedList(g.SkippedGroups())})
	}
	printTable(w, []string{"categorical", "numeric", "test", "statistic", "p-value", "skipped groups"}, rows)

	if len(rel.Independence) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render("Categorical - Categorical"))
		rows = rows[:0]
		for _, r := range rel.Independence {
			note := ""
			if r.Err != nil {
				note = r.Err.Error()
			}
			rows = append(rows, []string{r.ColumnA, r.ColumnB, num(r.Statistic), strconv.Itoa(r.DoF), num(r.PValue), note})
		}
		printTable(w, []string{"column a", "column b", "chi2", "dof", "p-value", "note"}, rows)
	}

	for _, s := range rel.Skipped {
		fmt.Fprintln(w, mutedStyle.Render("skipped "+s))
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func sortedList(items []string) string {
	sort.Strings(items)
	return strings.Join(items, ", ")
}
