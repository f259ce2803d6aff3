package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/logging"
	"github.com/JonMunkholm/graticard/internal/output"
	"github.com/JonMunkholm/graticard/internal/pipeline"
)

func newMergeCommand(a *app) *cobra.Command {
	var (
		flags   job
		floor   float64
		jobFile string
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge gifts from a document into a recipient list",
		Long: `Merge loads the recipient list and the gift document, applies the column
mappings, matches gifts to recipients by name and writes the merged list.

Mappings are comma-separated labels, one per column; leave a label empty to
ignore the column. Run "graticard preview FILE" to see the columns.`,
		Example: `  graticard merge --list people.csv --list-map "Name,,Address Line 1,City,State,Postal Code" \
    --skip-rows 1 --doc gifts.docx --doc-map "Name,Gift" --out merged.csv
  graticard merge --job holiday.yaml --out merged.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j := job{}
			if jobFile != "" {
				loaded, err := loadJob(jobFile)
				if err != nil {
					return err
				}
				j = loaded
			}
			overrideJob(cmd, &j, flags)
			if cmd.Flags().Changed("floor") {
				j.Floor = &floor
			}
			if j.Floor == nil {
				j.Floor = &a.cfg.Merge.ConfidenceFloor
			}

			summary, err := a.runMerge(cmd.Context(), j)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&jobFile, "job", "", "YAML job file; flags override its values")
	f.StringVar(&flags.List, "list", "", "recipient list (.csv or .tsv)")
	f.StringVar(&flags.ListMap, "list-map", "", "column labels for the recipient list")
	f.IntVar(&flags.SkipRows, "skip-rows", 0, "leading rows of the recipient list to drop, e.g. a header")
	f.StringVar(&flags.Doc, "doc", "", "gift document (.docx, .csv or .tsv)")
	f.StringVar(&flags.DocMap, "doc-map", "", "column labels for the gift document")
	f.StringVar(&flags.Out, "out", "", "output CSV file")
	f.Float64Var(&floor, "floor", 0, "fuzzy match confidence floor, 0-100 (default from MERGE_CONFIDENCE_FLOOR)")
	return cmd
}

// overrideJob copies explicitly set flags over the job file values.
func overrideJob(cmd *cobra.Command, j *job, flags job) {
	set := cmd.Flags().Changed
	if set("list") {
		j.List = flags.List
	}
	if set("list-map") {
		j.ListMap = flags.ListMap
	}
	if set("skip-rows") {
		j.SkipRows = flags.SkipRows
	}
	if set("doc") {
		j.Doc = flags.Doc
	}
	if set("doc-map") {
		j.DocMap = flags.DocMap
	}
	if set("out") {
		j.Out = flags.Out
	}
}

// runMerge executes a job end to end and returns a one-line summary.
func (a *app) runMerge(ctx context.Context, j job) (string, error) {
	if err := j.check(); err != nil {
		return "", err
	}

	listMap := core.ParseMapping(j.ListMap)
	docMap := core.ParseMapping(j.DocMap)
	for _, m := range []core.ColumnMapping{listMap, docMap} {
		if _, err := core.ValidateMapping(m); err != nil {
			return "", fmt.Errorf("mapping %q: %w", m.String(), err)
		}
	}

	logger := logging.WithFields(ctx, "list", j.List, "doc", j.Doc)
	sess := pipeline.NewSession(pipeline.Options{Loader: a.loader(), Logger: logger})

	batch, added := sess.AddFiles(ctx, []string{j.List, j.Doc})
	if failed := batch.Failed(); len(failed) > 0 {
		return "", failed[0].Err
	}
	list, doc := added[0], added[1]

	if _, err := sess.SetRole(list.ID, pipeline.RolePrimary); err != nil {
		return "", err
	}
	if _, err := sess.SetRole(doc.ID, pipeline.RoleSecondary); err != nil {
		return "", err
	}
	if j.SkipRows > 0 {
		if err := skipRows(sess, list, j.SkipRows); err != nil {
			return "", err
		}
	}

	if _, err := sess.Parse(list.ID, listMap); err != nil {
		return "", fmt.Errorf("parse %s: %w", j.List, err)
	}
	if _, err := sess.Parse(doc.ID, docMap); err != nil {
		return "", fmt.Errorf("parse %s: %w", j.Doc, err)
	}

	result, err := sess.Merge(*j.Floor)
	if err != nil {
		return "", err
	}

	if err := writeAtomic(j.Out, func(w io.Writer) error {
		return output.WriteCSV(w, result.Entities)
	}); err != nil {
		return "", err
	}

	r := result.Report
	return fmt.Sprintf("wrote %d recipients to %s: %d exact, %d fuzzy, %d without gift",
		len(result.Entities), j.Out, r.Exact, r.Fuzzy, r.BelowFloor), nil
}

// skipRows drops the first n rows of src.
func skipRows(sess *pipeline.Session, src *pipeline.Source, n int) error {
	if n > len(src.Rows) {
		return fmt.Errorf("cannot skip %d rows of %s: it has %d", n, src.Name, len(src.Rows))
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	_, err := sess.RemoveRows(src.ID, idx...)
	return err
}

// writeAtomic writes path through a temporary file in the same directory so
// a failed run never leaves a partial output.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
