package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	carrierFlag string
	actionFlag  string
	inputFlag   string
	outFlag     string
	concurrency int
	formatFlag  string
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Generate a label from a JSON shipment file",
	RunE:  runLabel,
}

var batchCmd = &cobra.Command{
	Use:   "batch FILE...",
	Short: "Generate labels for several shipment files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the input schema of a carrier",
	RunE:  runSchema,
}

func init() {
	for _, cmd := range []*cobra.Command{labelCmd, batchCmd, schemaCmd} {
		cmd.Flags().StringVar(&carrierFlag, "carrier", "", "carrier name")
		cmd.MarkFlagRequired("carrier")
	}
	for _, cmd := range []*cobra.Command{labelCmd, batchCmd} {
		cmd.Flags().StringVar(&actionFlag, "action", "shipping", "carrier action")
		cmd.Flags().StringVar(&outFlag, "out", ".", "directory labels are written to")
	}
	labelCmd.Flags().StringVar(&inputFlag, "input", "", "shipment JSON file")
	labelCmd.MarkFlagRequired("input")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent carrier calls")
	schemaCmd.Flags().StringVar(&formatFlag, "format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(labelCmd, batchCmd, schemaCmd)
}

func runLabel(cmd *cobra.Command, args []string) error {
	_, logger, registry, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	carrier, err := registry.Get(carrierFlag)
	if err != nil {
		return err
	}
	out := processFile(cmd.Context(), carrier, actionFlag, inputFlag, outFlag)
	if err := printJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	return out.err
}

func runBatch(cmd *cobra.Command, args []string) error {
	_, logger, registry, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	carrier, err := registry.Get(carrierFlag)
	if err != nil {
		return err
	}
	results := batch(cmd.Context(), carrier, actionFlag, args, outFlag, concurrency, logger)
	if err := printJSON(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	var errs []error
	for _, r := range results {
		errs = append(errs, r.err)
	}
	return errors.Join(errs...)
}

func runSchema(cmd *cobra.Command, args []string) error {
	_, logger, registry, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	carrier, err := registry.Get(carrierFlag)
	if err != nil {
		return err
	}
	return writeSchema(cmd.OutOrStdout(), carrier.Schema(), formatFlag)
}

// fileResult is the outcome of one shipment file.
type fileResult struct {
	Input    string   `json:"input"`
	Tracking []string `json:"tracking,omitempty"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`

	err error
}

// batch executes every file independently; one failure does not stop
// the others. Results keep the order of files.
func batch(ctx context.Context, carrier shipper.Carrier, action string, files []string, outDir string, limit int, logger *otelzap.Logger) []fileResult {
	results := make([]fileResult, len(files))

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range files {
		g.Go(func() error {
			results[i] = processFile(ctx, carrier, action, path, outDir)
			if results[i].err != nil {
				logger.Ctx(ctx).Warn("Shipment failed",
					zap.String("input", path),
					zap.String("kind", shipper.Kind(results[i].err)),
					zap.Error(results[i].err))
			}
			return nil
		})
	}
	g.Wait()

	return results
}

func processFile(ctx context.Context, carrier shipper.Carrier, action, path, outDir string) fileResult {
	res := fileResult{Input: path}
	fail := func(err error) fileResult {
		res.err = fmt.Errorf("%s: %w", path, err)
		res.Error = err.Error()
		return res
	}

	raw, err := readShipment(path)
	if err != nil {
		return fail(err)
	}
	result, err := carrier.Execute(ctx, raw, action)
	if err != nil {
		return fail(err)
	}
	written, err := writeArtifacts(outDir, result)
	if err != nil {
		return fail(err)
	}

	for _, p := range result.Parcels {
		res.Tracking = append(res.Tracking, p.Tracking.Number)
	}
	res.Files = written
	return res
}

func readShipment(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing shipment: %w", err)
	}
	return raw, nil
}

// writeArtifacts stores every label and annex in dir and returns the
// paths written.
func writeArtifacts(dir string, result *shipper.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	for _, p := range result.Parcels {
		if err := write(p.Label.Name+"."+extension(p.Label.Type), p.Label.Data); err != nil {
			return written, err
		}
		for i, a := range result.Annexes {
			name := fmt.Sprintf("%s_annex_%d.%s", p.Label.Name, i+1, extension(a.Type))
			if err := write(name, a.Data); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func extension(fileType string) string {
	switch t := strings.ToLower(fileType); t {
	case "pdf", "zpl", "png":
		return t
	default:
		return "bin"
	}
}

func writeSchema(w io.Writer, schema *shipper.Schema, format string) error {
	desc := schema.Describe()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(desc)
	default:
		return fmt.Errorf("unknown format %q, use yaml or json", format)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
