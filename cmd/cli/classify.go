package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"exodash/adapters/classifier"
	"exodash/app"
	"exodash/domain/batch"
	"exodash/internal/config"
	"exodash/internal/logging"
	"exodash/ports"

	"github.com/spf13/cobra"
)

type classifyOptions struct {
	input       string
	csvOut      string
	xlsxOut     string
	url         string
	offline     bool
	chunkSize   int
	concurrency int
}

func newClassifyCmd() *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify [file.csv]",
		Short: "Classify every row of a candidate CSV",
		Long: `Classify every row of a candidate CSV in bulk and print a summary.

Example: exodash-cli classify koi.csv --out koi-results.csv --xlsx koi-results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			model, err := opts.classifier()
			if err != nil {
				return err
			}
			return runClassify(cmd.Context(), cmd.OutOrStdout(), model, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.csvOut, "out", "o", "", "Write results CSV to this file")
	cmd.Flags().StringVar(&opts.xlsxOut, "xlsx", "", "Write an Excel workbook to this file")
	cmd.Flags().StringVar(&opts.url, "url", "", "Model service base URL (overrides CLASSIFIER_URL)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use the bundled heuristic instead of the model service")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Rows per request (0 sends one request)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Concurrent chunk requests")

	return cmd
}

func (o classifyOptions) classifier() (ports.Classifier, error) {
	if o.offline {
		return classifier.HeuristicClassifier{}, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.url != "" {
		cfg.Classifier.BaseURL = o.url
	}
	return classifier.NewClient(cfg.Classifier)
}

func runClassify(ctx context.Context, out io.Writer, model ports.Classifier, opts classifyOptions) error {
	logger := logging.New("CLI")
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(opts.input)
	if err != nil {
		return err
	}

	lastProgress := -1
	job, err := app.NewBatchJob(model, app.BatchOptions{
		ChunkSize:   opts.chunkSize,
		Concurrency: opts.concurrency,
		Observer: func(s app.BatchSnapshot) {
			if s.State == batch.StateSubmitting && s.Progress != lastProgress {
				lastProgress = s.Progress
				logger.Debugf("%3d%% %s", s.Progress, bar(float64(s.Progress)/100, 30))
			}
		},
	})
	if err != nil {
		return err
	}

	mimeType := "text/csv"
	if ext := filepath.Ext(opts.input); ext != "" && ext != ".csv" {
		if t := mime.TypeByExtension(ext); t != "" {
			mimeType = t
		}
	}
	if err := job.LoadFile(data, mimeType); err != nil {
		return err
	}
	if err := job.Parse(); err != nil {
		return err
	}

	snap := job.Snapshot()
	logger.Infof("Classifying %d rows from %s (mission %s)", snap.Rows, opts.input, orUnknown(snap.Mission))
	start := time.Now()
	if err := job.Submit(ctx); err != nil {
		return err
	}

	summary, err := job.Summary()
	if err != nil {
		return err
	}
	printSummary(out, summary, time.Since(start))

	if opts.csvOut != "" {
		body, err := job.ExportCSV()
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.csvOut, body, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(out, labelStyle.Render("results written to "+opts.csvOut))
	}
	if opts.xlsxOut != "" {
		body, err := job.ExportXLSX()
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsxOut, body, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(out, labelStyle.Render("workbook written to "+opts.xlsxOut))
	}
	return nil
}

func printSummary(out io.Writer, s batch.Summary, took time.Duration) {
	fmt.Fprintln(out, titleStyle.Render("Batch summary"))
	keyValues(out, [][2]string{
		{"rows", fmt.Sprintf("%d", s.Total)},
		{"exoplanets", positiveStyle.Render(fmt.Sprintf("%d", s.Positive))},
		{"false positives", negativeStyle.Render(fmt.Sprintf("%d", s.Negative))},
		{"positive rate", fmt.Sprintf("%.1f%%", s.PositiveRate()*100)},
		{"mean confidence", fmt.Sprintf("%.3f", s.MeanConfidence)},
		{"median confidence", fmt.Sprintf("%.3f", s.MedianConfidence)},
		{"took", took.Round(time.Millisecond).String()},
	})

	peak := 0
	for _, b := range s.Histogram {
		if b.Count > peak {
			peak = b.Count
		}
	}
	if peak == 0 {
		return
	}
	fmt.Fprintln(out, labelStyle.Render("confidence"))
	for _, b := range s.Histogram {
		fmt.Fprintf(out, "  %.1f-%.1f %s %d\n", b.Lower, b.Upper, bar(float64(b.Count)/float64(peak), 30), b.Count)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
