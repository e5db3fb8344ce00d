// Package main provides the CLI entrypoint for animeval.
package main

import (
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"honnef.co/go/anim"
	"honnef.co/go/anim/internal/animfile"
	"honnef.co/go/anim/internal/config"
	"honnef.co/go/anim/internal/plot"
	"honnef.co/go/anim/internal/sampler"
	"honnef.co/go/anim/internal/store"
)

const (
	defaultFrom        = 0.0
	defaultTo          = 1.0
	defaultStep        = 0.1
	defaultPlotWidth   = 800
	defaultPlotHeight  = 400
	defaultPlotSamples = 200
)

var (
	configPath string
	verbose    bool

	sampleFrom    float64
	sampleTo      float64
	sampleStep    float64
	sampleClip    string
	sampleCurves  []string
	sampleWorkers int

	bakeDB string

	plotCurve   string
	plotOut     string
	plotWidth   int
	plotHeight  int
	plotSamples int
	plotFrom    float64
	plotTo      float64
	plotLabels  bool
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	timeStyle    = cellStyle.Foreground(lipgloss.Color("#8C8C8C"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "animeval",
		Short:        "Evaluate, bake and plot keyframe animation documents",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/animeval/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log document events")

	rootCmd.AddCommand(newSampleCmd())
	rootCmd.AddCommand(newBakeCmd())
	rootCmd.AddCommand(newPlotCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func newLogger() l.Wrapper {
	if verbose {
		return l.NewConsoleLoggerWrapper()
	}
	return l.NewNopLoggerWrapper()
}

func loadConfig() (config.FileConfig, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func loadDocument(path string, logger l.Wrapper) (*animfile.Bundle, error) {
	b, err := animfile.Load(path, anim.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return b, nil
}

func addSampleFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&sampleFrom, "from", defaultFrom, "first sample time")
	cmd.Flags().Float64Var(&sampleTo, "to", defaultTo, "last sample time")
	cmd.Flags().Float64Var(&sampleStep, "step", defaultStep, "time between samples")
	cmd.Flags().StringVar(&sampleClip, "clip", "", "clip to activate before sampling")
	cmd.Flags().StringSliceVar(&sampleCurves, "curve", nil, "curves to sample (default: all)")
	cmd.Flags().IntVar(&sampleWorkers, "workers", 0, "curves evaluated concurrently (default: GOMAXPROCS)")
}

func applySampleConfig(cmd *cobra.Command, cfg config.SampleConfig) {
	applyFloatConfig(cmd, "from", &sampleFrom, cfg.From)
	applyFloatConfig(cmd, "to", &sampleTo, cfg.To)
	applyFloatConfig(cmd, "step", &sampleStep, cfg.Step)
	applyIntConfig(cmd, "workers", &sampleWorkers, cfg.Workers)
}

// parseTimes parses explicit sample times given as arguments. Repeated times
// are dropped, keeping the first occurrence.
func parseTimes(args []string) ([]float64, error) {
	ts := make([]float64, 0, len(args))
	for _, arg := range args {
		t, err := cast.ToFloat64E(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", arg, err)
		}
		if math.IsNaN(t) {
			return nil, fmt.Errorf("invalid time %q: not a number", arg)
		}
		if !slices.Contains(ts, t) {
			ts = append(ts, t)
		}
	}
	return ts, nil
}

func runSampling(cmd *cobra.Command, cfg config.FileConfig, args []string) (*animfile.Bundle, *sampler.Result, error) {
	applySampleConfig(cmd, cfg.Sample)

	at, err := parseTimes(args[1:])
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger()
	b, err := loadDocument(args[0], logger)
	if err != nil {
		return nil, nil, err
	}
	res, err := sampler.Run(cmd.Context(), b, sampler.Request{
		From:    sampleFrom,
		To:      sampleTo,
		Step:    sampleStep,
		At:      at,
		Curves:  sampleCurves,
		Clip:    sampleClip,
		Workers: sampleWorkers,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sample: %w", err)
	}
	return b, res, nil
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample FILE [TIME...]",
		Short: "Print curve values over a range of times",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSampleCmd,
	}
	addSampleFlags(cmd)
	return cmd
}

func runSampleCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, res, err := runSampling(cmd, cfg, args)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), renderSamples(res)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func renderSamples(res *sampler.Result) string {
	headers := append([]string{"t"}, res.Curves...)
	rows := make([][]string, len(res.Times))
	for ti, t := range res.Times {
		row := make([]string, 0, len(headers))
		row = append(row, formatFloat(t))
		for ci := range res.Curves {
			row = append(row, formatFloat(res.Values[ci][ti]))
		}
		rows[ti] = row
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return timeStyle
			default:
				return cellStyle.Align(lipgloss.Right)
			}
		}).
		String()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

func newBakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bake FILE [TIME...]",
		Short: "Sample curves and store the values in SQLite",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBakeCmd,
	}
	addSampleFlags(cmd)
	cmd.Flags().StringVar(&bakeDB, "db", "", "database path (default: $XDG_DATA_HOME/animeval/samples.db)")
	return cmd
}

func runBakeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "db", &bakeDB, cfg.Bake.DB)
	if bakeDB == "" {
		bakeDB = config.DefaultDBPath()
	}

	_, res, err := runSampling(cmd, cfg, args)
	if err != nil {
		return err
	}

	st, err := store.Open(bakeDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	bake, err := st.InsertBake(cmd.Context(), store.Bake{
		Source: args[0],
		Clip:   sampleClip,
		From:   res.Times[0],
		To:     res.Times[len(res.Times)-1],
		Step:   sampleStep,
	}, res.Samples())
	if err != nil {
		return fmt.Errorf("failed to store samples: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(
		fmt.Sprintf("bake %d: %d samples of %d curves written to %s", bake.ID, bake.Samples, len(res.Curves), bakeDB)))
	return err
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot FILE",
		Short: "Render a curve to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlotCmd,
	}
	cmd.Flags().StringVar(&plotCurve, "curve", "", "curve to plot")
	cmd.Flags().StringVarP(&plotOut, "out", "o", "", "output PNG path (default: CURVE.png)")
	cmd.Flags().IntVar(&plotWidth, "width", defaultPlotWidth, "image width")
	cmd.Flags().IntVar(&plotHeight, "height", defaultPlotHeight, "image height")
	cmd.Flags().IntVar(&plotSamples, "samples", defaultPlotSamples, "evaluations for extrapolated parts")
	cmd.Flags().Float64Var(&plotFrom, "from", 0, "first plotted time (default: key range with margin)")
	cmd.Flags().Float64Var(&plotTo, "to", 0, "last plotted time")
	cmd.Flags().BoolVar(&plotLabels, "labels", true, "draw range labels")
	_ = cmd.MarkFlagRequired("curve")
	return cmd
}

func runPlotCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "width", &plotWidth, cfg.Plot.Width)
	applyIntConfig(cmd, "height", &plotHeight, cfg.Plot.Height)
	applyIntConfig(cmd, "samples", &plotSamples, cfg.Plot.Samples)

	b, err := loadDocument(args[0], newLogger())
	if err != nil {
		return err
	}
	id, ok := b.CurveByName(plotCurve)
	if !ok {
		return fmt.Errorf("unknown curve %q", plotCurve)
	}
	c, _ := b.Doc.Curve(id)

	out := plotOut
	if out == "" {
		out = plotCurve + ".png"
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	err = plot.EncodePNG(f, c, plot.Options{
		Width:   plotWidth,
		Height:  plotHeight,
		Samples: plotSamples,
		From:    plotFrom,
		To:      plotTo,
		Labels:  plotLabels,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to plot %q: %w", plotCurve, err)
	}
	logErrf("Wrote %s\n", out)
	return nil
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a document between YAML and TOML",
		Args:  cobra.ExactArgs(2),
		RunE:  runConvertCmd,
	}
}

func runConvertCmd(_ *cobra.Command, args []string) error {
	b, err := loadDocument(args[0], newLogger())
	if err != nil {
		return err
	}
	if err := animfile.Save(args[1], b); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a document and list advisories",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	b, err := loadDocument(args[0], newLogger())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if err := b.Doc.Validate(); err != nil {
		return err
	}
	for _, a := range b.Doc.Advisories() {
		if _, err := fmt.Fprintln(w, warnStyle.Render("warning: "+advisoryText(b, a))); err != nil {
			return err
		}
	}
	var clips, animated int
	b.Doc.Clips(func(anim.ClipID, *anim.Clip) bool { clips++; return true })
	b.Doc.AnimatedValues(func(anim.AnimatedID, *anim.Animated) bool { animated++; return true })
	_, err = fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("ok: %d curves, %d clips, %d animated values",
		b.Doc.CurveCount(), clips, animated)))
	return err
}

// advisoryText names the object an advisory is about the way the file does.
func advisoryText(b *animfile.Bundle, a anim.Advisory) string {
	switch ref := a.Ref.(type) {
	case anim.CurveID:
		if name, ok := b.CurveName(ref); ok {
			return fmt.Sprintf("curve %q: %s", name, a.Message)
		}
	case anim.ClipID:
		if c, ok := b.Doc.Clip(ref); ok {
			return fmt.Sprintf("clip %q: %s", c.Name(), a.Message)
		}
	}
	return a.String()
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultTemplate), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}
