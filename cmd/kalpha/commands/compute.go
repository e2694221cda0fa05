package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/okian/kalpha/internal/adapters/loader"
	service "github.com/okian/kalpha/internal/app"
	"github.com/okian/kalpha/internal/config"
	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/internal/domain/scoring"
	"github.com/okian/kalpha/internal/domain/types"
	"github.com/okian/kalpha/pkg/logger"
)

// Input and output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	outputText  = "text"
	outputJSON  = "json"
)

var errInvalidFlag = errors.New("invalid flag")

type computeOptions struct {
	metric      string
	missing     []string
	delimiter   string
	orientation string
	header      bool
	categorical bool
	forceBulk   bool
	all         bool
	format      string
	output      string
}

func newComputeCmd(ro *rootOptions) *cobra.Command {
	co := &computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute [file]",
		Short: "Compute alpha for a ratings file",
		Long: `Compute Krippendorff's alpha for a ratings file, or stdin when the file
is "-" or omitted.

Tables have one coder per row unless --orientation items is given. Columns
are split on whitespace unless --delimiter is set. Files ending in .json
are read as {"coders": [...]} where each coder is an object keyed by item
or an array rated by position.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			co.merge(cmd, ro.cfg)
			return co.run(cmd, ro, path)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&co.metric, "metric", "m", "", "distance metric: nominal, interval, ratio or absolute (default from config)")
	f.StringSliceVar(&co.missing, "missing", nil, "values treated as missing ratings (default from config)")
	f.StringVarP(&co.delimiter, "delimiter", "d", "", `column separator, e.g. "," or "\t" (default whitespace)`)
	f.StringVar(&co.orientation, "orientation", "", "table rows are coders or items")
	f.BoolVar(&co.header, "header", false, "first table row holds labels")
	f.BoolVar(&co.categorical, "categorical", false, "code labels by first appearance instead of parsing numbers")
	f.BoolVar(&co.forceBulk, "force-bulk", false, "evaluate custom metrics such as absolute through the vectorized path")
	f.BoolVar(&co.all, "all", false, "report every built-in metric")
	f.StringVar(&co.format, "format", "", "input format: table or json (default by file extension)")
	f.StringVarP(&co.output, "output", "o", outputText, "output format: text or json")

	return cmd
}

// merge fills unset flags from configuration.
func (co *computeOptions) merge(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if !f.Changed("metric") {
		co.metric = cfg.Metric
	}
	if !f.Changed("missing") {
		co.missing = cfg.Missing
	}
	if !f.Changed("delimiter") {
		co.delimiter = cfg.Delimiter
	}
	if !f.Changed("orientation") {
		co.orientation = cfg.Orientation
	}
	if !f.Changed("header") {
		co.header = cfg.Header
	}
	if !f.Changed("categorical") {
		co.categorical = cfg.Categorical
	}
	if !f.Changed("force-bulk") {
		co.forceBulk = cfg.ForceBulk
	}
}

func (co *computeOptions) run(cmd *cobra.Command, ro *rootOptions, path string) error {
	ctx := cmd.Context()

	scorer := scoring.NewInMemoryScorer(
		scoring.WithDefaultMetric(co.metric),
		scoring.WithMissing(co.missing...),
		scoring.WithExtras(),
	)

	metrics := []string{co.metric}
	if co.all {
		metrics = []string{alpha.NominalName, alpha.IntervalName, alpha.RatioName}
	}
	for _, m := range metrics {
		if _, err := scorer.Metric(m); err != nil {
			return err
		}
	}
	if co.output != outputText && co.output != outputJSON {
		return fmt.Errorf("%w: --output must be text or json, got %q", errInvalidFlag, co.output)
	}

	data, err := co.read(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	ro.log.Debug(ctx, "ratings loaded", logger.String("input", path), logger.Int("coders", len(data)))

	svc := service.New(
		service.WithLogger(ro.log),
		service.WithScorer(scorer),
	)

	results := make([]model.Result, 0, len(metrics))
	for _, m := range metrics {
		res, err := svc.Compute(ctx, model.Request{
			Metric:      m,
			Categorical: co.categorical,
			ForceBulk:   co.forceBulk,
			Coders:      data,
		})
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	return co.write(cmd.OutOrStdout(), results)
}

// read loads the dataset at path, or stdin for "-".
func (co *computeOptions) read(stdin io.Reader, path string) (alpha.Dataset[model.Cell], error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	format := co.format
	if format == "" {
		format = formatTable
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = formatJSON
		}
	}

	switch format {
	case formatJSON:
		return loader.ReadJSON(r)
	case formatTable:
		delim, err := parseDelimiter(co.delimiter)
		if err != nil {
			return nil, err
		}
		orientation, err := loader.ParseOrientation(co.orientation)
		if err != nil {
			return nil, err
		}
		return loader.ReadTable(r,
			loader.WithDelimiter(delim),
			loader.WithOrientation(orientation),
			loader.WithHeader(co.header),
		)
	default:
		return nil, fmt.Errorf("%w: --format must be table or json, got %q", errInvalidFlag, format)
	}
}

// parseDelimiter accepts a single character or the escapes \t and "tab".
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: --delimiter must be a single character, got %q", errInvalidFlag, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func (co *computeOptions) write(w io.Writer, results []model.Result) error {
	if co.output == outputJSON {
		views := make([]*types.ReportView, len(results))
		for i := range results {
			views[i] = types.NewReportView(&results[i])
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	for _, res := range results {
		if _, err := fmt.Fprintf(w, "%s metric: %.3f\n", res.Metric, res.Alpha); err != nil {
			return err
		}
	}
	return nil
}
