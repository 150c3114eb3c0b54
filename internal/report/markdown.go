package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"goeda/domain/stats"
	"goeda/internal/profiling"
)

// CorrelationLine formats a strong pair as "A & B: 0.97"
func CorrelationLine(p stats.StrongPair) string {
	return fmt.Sprintf("%s & %s: %.2f", p.ColumnA, p.ColumnB, p.Coefficient)
}

// GroupLine formats a group comparison as "cat - num: ANOVA, p-value = 0.0123"
func GroupLine(r stats.GroupTestResult) string {
	if r.Err != nil {
		return fmt.Sprintf("%s - %s: not tested (%v)", r.CategoricalColumn, r.NumericColumn, r.Err)
	}
	return fmt.Sprintf("%s - %s: %s, p-value = %.4f", r.CategoricalColumn, r.NumericColumn, r.Test, r.PValue)
}

// IndependenceLine formats a chi-square result as "a & b: p-value = 0.5000"
func IndependenceLine(r stats.ContingencyResult) string {
	if r.Err != nil {
		return fmt.Sprintf("%s & %s: not tested (%v)", r.ColumnA, r.ColumnB, r.Err)
	}
	return fmt.Sprintf("%s & %s: p-value = %.4f", r.ColumnA, r.ColumnB, r.PValue)
}

// WriteMarkdown renders the report
func WriteMarkdown(w io.Writer, r *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Analysis Report: %s\n\n", r.Source)
	fmt.Fprintf(&b, "Report `%s`, generated %s. %d rows, %d columns, fingerprint `%s`.\n\n",
		r.ID, r.CreatedAt, r.Rows, r.Columns, shortHash(r.Fingerprint))

	if r.Profile != nil {
		writeProfile(&b, r.Profile)
	}

	b.WriteString("## Relationships\n\n")
	b.WriteString("### Strong Correlations\n\n")
	switch {
	case r.Correlations == nil:
		b.WriteString("_Not computed._\n\n")
	case len(r.Correlations.StrongPairs) == 0:
		fmt.Fprintf(&b, "No pair exceeds |r| > %.2f.\n\n", r.Correlations.Threshold)
	default:
		for _, p := range r.Correlations.StrongPairs {
			fmt.Fprintf(&b, "- %s\n", CorrelationLine(p))
		}
		b.WriteString("\n")
	}
	if r.Correlations != nil {
		writeMatrix(&b, r.Correlations.Matrix)
		for _, enc := range r.Correlations.Encodings {
			if len(enc.Unmapped) > 0 {
				fmt.Fprintf(&b, "- `%s`: values without a declared rank treated as missing: %s\n",
					enc.Column, strings.Join(enc.Unmapped, ", "))
			}
			if enc.Rejected {
				fmt.Fprintf(&b, "- `%s`: rejected (%s)\n", enc.Column, enc.Error)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("### Numeric - Categorical\n\n")
	writeLines(&b, len(r.Groups), func(i int) string { return GroupLine(r.Groups[i]) })

	b.WriteString("### Categorical - Categorical\n\n")
	writeLines(&b, len(r.Independence), func(i int) string { return IndependenceLine(r.Independence[i]) })

	if len(r.Notes) > 0 {
		b.WriteString("## Notes\n\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders the report to a string
func Markdown(r *Report) (string, error) {
	var b strings.Builder
	if err := WriteMarkdown(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeProfile(b *strings.Builder, p *profiling.DatasetProfile) {
	b.WriteString("## Descriptive Statistics\n\n")
	b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max | unique | top | freq |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|---|\n")
	for _, s := range p.Summary {
		if s.Numeric {
			fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | | | |\n", escape(s.Column), s.Count,
				num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Median), num(s.Q75), num(s.Max))
			continue
		}
		fmt.Fprintf(b, "| %s | %d | | | | | | | | %d | %s | %d |\n", escape(s.Column), s.Count, s.Unique, escape(s.Top), s.Freq)
	}
	b.WriteString("\n")

	for _, n := range p.Numeric {
		fmt.Fprintf(b, "### Distribution of %s\n\nSkewness: %s\n\nKurtosis: %s\n\n", n.Column, num(n.Skewness), num(n.Kurtosis))
	}
	for _, c := range p.Categorical {
		fmt.Fprintf(b, "### Distribution of %s\n\n| value | Count | Percentage |\n|---|---|---|\n", c.Column)
		for _, v := range c.Values {
			fmt.Fprintf(b, "| %s | %d | %.2f |\n", escape(v.Value), v.Count, v.Percentage)
		}
		b.WriteString("\n")
	}
	for _, d := range p.Datetime {
		fmt.Fprintf(b, "### Analysis of %s\n\n", d.Column)
		if d.Err != nil {
			fmt.Fprintf(b, "_%v_\n\n", d.Err)
			continue
		}
		fmt.Fprintf(b, "Time Range: %s\n\nEarliest Date: %s\n\nLatest Date: %s\n\n",
			formatRange(d.Range), d.Earliest.Format(time.DateTime), d.Latest.Format(time.DateTime))
	}
}

func writeMatrix(b *strings.Builder, m stats.CorrelationMatrix) {
	if len(m.Columns) == 0 {
		return
	}
	b.WriteString("|")
	for _, c := range m.Columns {
		fmt.Fprintf(b, " | %s", escape(c))
	}
	b.WriteString(" |\n|---")
	for range m.Columns {
		b.WriteString("|---")
	}
	b.WriteString("|\n")
	for i, c := range m.Columns {
		fmt.Fprintf(b, "| %s", escape(c))
		for j := range m.Columns {
			fmt.Fprintf(b, " | %s", num(m.At(i, j)))
		}
		b.WriteString(" |\n")
	}
	b.WriteString("\n")
}

func writeLines(b *strings.Builder, n int, line func(int) string) {
	if n == 0 {
		b.WriteString("_No pairs to test._\n\n")
		return
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(b, "- %s\n", line(i))
	}
	b.WriteString("\n")
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

// formatRange prints a duration the way dataframe libraries print timedeltas
func formatRange(d time.Duration) string {
	days := d / (24 * time.Hour)
	rest := d % (24 * time.Hour)
	h := rest / time.Hour
	m := (rest % time.Hour) / time.Minute
	s := (rest % time.Minute) / time.Second
	return fmt.Sprintf("%d days %02d:%02d:%02d", days, h, m, s)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
