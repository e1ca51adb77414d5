// Command stringsync keeps Apple .strings localization files in sync with the
// strings of an application's sources and existing translation exports.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/stringsync/config"
	"github.com/minios-linux/stringsync/extract"
	"github.com/minios-linux/stringsync/i18n"
	"github.com/minios-linux/stringsync/lockfile"
	"github.com/minios-linux/stringsync/merge"
	sf "github.com/minios-linux/stringsync/stringsfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
)

// setupLogging points the global zerolog logger at a console writer on
// stderr. Debug level shows per-key match events.
func setupLogging(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stringsync",
		Short: i18n.T("Keep .strings localization files in sync with sources"),
		Long: `stringsync keeps Apple .strings files in sync with sources and translations.

Scans source directories for translation exports (.lg) and strings tables,
fills in translations from a reference export, and writes a sorted strings
file split into Translated, Extra and Not Translated sections, or updates an
existing file in place.

Commands:
  sync      Scan sources and write or update a strings file
  update    Update an existing strings file in place
  status    Show translation statistics of a strings file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output")

	root.AddCommand(
		newSyncCmd(),
		newUpdateCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	setupLogging(false)

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg(i18n.T("stringsync failed"))
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stringsync version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// sync / update
// ---------------------------------------------------------------------------

// syncOptions holds command-line overrides for the project settings.
type syncOptions struct {
	reference  string
	escape     string
	encoding   string
	extensions []string
	update     bool
	genstrings bool
	dryRun     bool
}

func (o *syncOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.reference, "reference", "r", "", "Translation export (.lg) or strings file supplying translations")
	f.StringVarP(&o.escape, "escape", "e", "", "Strings file listing keys allowed to stay untranslated")
	f.StringVar(&o.encoding, "encoding", "", "Output encoding: utf16 or utf8")
	f.StringSliceVar(&o.extensions, "ext", nil, "Extensions of scanned files (default .lg)")
	f.BoolVar(&o.genstrings, "genstrings", false, "Also run genstrings on Objective-C/Swift sources")
	f.BoolVar(&o.dryRun, "dry-run", false, "Report what would change without writing")
}

func newSyncCmd() *cobra.Command {
	opts := &syncOptions{}
	cmd := &cobra.Command{
		Use:   "sync [strings_file] [source_dir...]",
		Short: i18n.T("Scan sources and write or update a strings file"),
		Long: `Scan source directories, match the strings found against a reference
translation export and write the result.

Without arguments the strings file and source directories come from
.stringsync.yaml, STRINGSYNC_* environment variables or auto-detection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runSync(ctx, opts, args)
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVarP(&opts.update, "update", "u", false, "Update the existing file in place instead of rewriting it")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	opts := &syncOptions{update: true}
	cmd := &cobra.Command{
		Use:   "update <strings_file> [source_dir...]",
		Short: i18n.T("Update an existing strings file in place"),
		Long: `Rewrite an existing strings file keeping its layout: known records are
replaced, records no longer in the sources are removed and new strings are
appended under a "New strings" header.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runSync(ctx, opts, args)
		},
	}
	opts.register(cmd)
	return cmd
}

// signalContext returns a context cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadSettings merges project settings, positional arguments and flags.
func loadSettings(opts *syncOptions, args []string) (*config.File, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.StringsFile, err = filepath.Abs(args[0])
		if err != nil {
			return nil, err
		}
	}
	if len(args) > 1 {
		cfg.Sources = nil
		for _, a := range args[1:] {
			abs, err := filepath.Abs(a)
			if err != nil {
				return nil, err
			}
			cfg.Sources = append(cfg.Sources, abs)
		}
	}

	// Flag paths are relative to the working directory, like the
	// positional ones; only project file paths are relative to --root.
	if opts.reference != "" {
		if cfg.Reference, err = filepath.Abs(opts.reference); err != nil {
			return nil, err
		}
	}
	if opts.escape != "" {
		if cfg.Escape, err = filepath.Abs(opts.escape); err != nil {
			return nil, err
		}
	}
	if opts.encoding != "" {
		cfg.Encoding = opts.encoding
	}
	if len(opts.extensions) > 0 {
		cfg.Extensions = opts.extensions
	}
	if opts.update {
		cfg.Mode = config.ModeUpdate
	}
	if opts.genstrings {
		cfg.Genstrings = true
	}

	if cfg.StringsFile == "" || len(cfg.Sources) == 0 {
		proj, err := config.Detect(rootDir)
		if err != nil {
			return nil, fmt.Errorf("detecting project layout: %w", err)
		}
		cfg.Fill(proj)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Resolve(rootDir)

	if cfg.StringsFile == "" {
		return nil, errors.New(i18n.T("no strings file given and none found"))
	}
	if len(cfg.Sources) == 0 {
		return nil, errors.New(i18n.T("no source directories given and none found"))
	}
	return cfg, nil
}

func runSync(ctx context.Context, opts *syncOptions, args []string) error {
	cfg, err := loadSettings(opts, args)
	if err != nil {
		return err
	}

	scanned, err := extract.ScanDirs(cfg.Sources, cfg.Extensions)
	if err != nil {
		return err
	}

	if cfg.Genstrings {
		sources, err := extract.FindGenstringsSources(cfg.Sources)
		if err != nil {
			return err
		}
		generated, err := extract.RunGenstrings(ctx, sources)
		if err != nil {
			return err
		}
		scanned = merge.Merge(scanned, generated)
	}

	reference := make(sf.Mapping)
	switch {
	case cfg.Reference == "":
	case !fileExists(cfg.Reference):
		log.Warn().Str("path", cfg.Reference).Msg(i18n.T("Reference not found, nothing will be translated"))
	default:
		reference, err = extract.ScanFile(cfg.Reference)
		if err != nil {
			return err
		}
	}

	result := merge.Match(scanned, reference)
	report := merge.Report(scanned, reference)
	log.Info().
		Int("scanned", len(scanned)).
		Int("translated", len(report.Translated)).
		Int("new", len(report.New)).
		Int("raw", len(report.Raw)).
		Int("deleted", len(report.Deleted)).
		Msg(i18n.T("Matched strings"))

	if opts.dryRun {
		printReport(report)
		return nil
	}

	escape := make(sf.Mapping)
	if cfg.Escape != "" {
		escape, err = sf.ReadStrings(cfg.Escape)
		if err != nil {
			return err
		}
	}

	switch cfg.Mode {
	case config.ModeUpdate:
		if err := sf.UpdateFile(cfg.StringsFile, result, nil); err != nil {
			return err
		}
		log.Info().Str("path", cfg.StringsFile).
			Msgf(i18n.N("%d string updated", "%d strings updated", len(result)), len(result))
	default:
		if err := sf.WriteCategorized(cfg.StringsFile, result, escape, cfg.OutputEncoding()); err != nil {
			return err
		}
		log.Info().Str("path", cfg.StringsFile).
			Msgf(i18n.N("%d string written", "%d strings written", len(result)), len(result))
	}

	return recordLock(cfg.StringsFile, result)
}

// recordLock stores the checksums of what was just written.
func recordLock(path string, m sf.Mapping) error {
	lf, err := lockfile.Load(rootDir)
	if err != nil {
		return err
	}
	lf.Record(lockfile.TargetKey(absRoot(), path), m)
	return lf.Save()
}

func absRoot() string {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return rootDir
	}
	return abs
}

func printReport(rep merge.MatchReport) {
	section := func(title string, keys []string) {
		if len(keys) == 0 {
			return
		}
		fmt.Fprintf(os.Stderr, "%s%s (%d)%s\n", colorBlue, title, len(keys), colorReset)
		for _, k := range keys {
			fmt.Fprintf(os.Stderr, "  %s\n", k)
		}
	}
	section(i18n.T("Translated from reference"), rep.Translated)
	section(i18n.T("New"), rep.New)
	section(i18n.T("Untranslated in reference"), rep.Raw)
	section(i18n.T("Deleted"), rep.Deleted)
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var escapePath string
	cmd := &cobra.Command{
		Use:   "status [strings_file]",
		Short: i18n.T("Show translation statistics of a strings file"),
		Long: `Show how many records of a strings file are translated, marked extra or
still untranslated, and which keys changed since the last sync.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(args, escapePath)
		},
	}
	cmd.Flags().StringVarP(&escapePath, "escape", "e", "", "Strings file listing keys allowed to stay untranslated")
	return cmd
}

func runStatus(args []string, escapePath string) error {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if cfg.StringsFile, err = filepath.Abs(args[0]); err != nil {
			return err
		}
	}
	if escapePath != "" {
		if cfg.Escape, err = filepath.Abs(escapePath); err != nil {
			return err
		}
	}
	if cfg.StringsFile == "" {
		proj, err := config.Detect(rootDir)
		if err != nil {
			return err
		}
		cfg.Fill(proj)
	}
	cfg = cfg.Resolve(rootDir)
	if cfg.StringsFile == "" {
		return errors.New(i18n.T("no strings file given and none found"))
	}

	f, err := sf.ReadFile(cfg.StringsFile, nil)
	if err != nil {
		return err
	}
	escape := make(sf.Mapping)
	if cfg.Escape != "" {
		if escape, err = sf.ReadStrings(cfg.Escape); err != nil {
			return err
		}
	}

	s := sf.Categorize(f.Strings, escape)
	total := len(f.Strings)

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Strings file"), colorReset)
	fmt.Fprintf(os.Stderr, "  Path:          %s\n", cfg.StringsFile)
	if !f.Encoding.IsZero() {
		fmt.Fprintf(os.Stderr, "  Encoding:      %s\n", f.Encoding.Name)
	}
	fmt.Fprintf(os.Stderr, "  Records:       %d\n", total)
	fmt.Fprintf(os.Stderr, "  Translated:    %d\n", len(s.Translated))
	fmt.Fprintf(os.Stderr, "  Extra:         %d\n", len(s.Extra))
	fmt.Fprintf(os.Stderr, "  Untranslated:  %d\n", len(s.NotTranslated))
	fmt.Fprintf(os.Stderr, "  Progress:      %s\n", progressBar(percent(len(s.Translated)+len(s.Extra), total), 20))

	lf, err := lockfile.Load(rootDir)
	if err != nil {
		return err
	}
	target := lockfile.TargetKey(absRoot(), cfg.StringsFile)
	if _, synced := lf.Checksums[target]; synced {
		changed := lf.Changed(target, f.Strings)
		removed := lf.Removed(target, f.Strings)
		fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Since last sync"), colorReset)
		fmt.Fprintf(os.Stderr, "  Changed:       %s\n", describeKeys(changed))
		fmt.Fprintf(os.Stderr, "  Removed:       %s\n", describeKeys(removed))
	}
	fmt.Fprintf(os.Stderr, "  Lock file:     %s (%s)\n", lf.Path(), lf.Summary())
	fmt.Fprintln(os.Stderr)
	return nil
}

// ---------------------------------------------------------------------------
// Output helpers
// ---------------------------------------------------------------------------

func percent(part, total int) int {
	if total == 0 {
		return 100
	}
	return part * 100 / total
}

// progressBar renders a colored bar followed by the percentage.
func progressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100

	color := colorRed
	switch {
	case pct >= 100:
		color = colorGreen
	case pct >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, pct)
}

// describeKeys summarises a key list for status output.
func describeKeys(keys []string) string {
	const maxShown = 5
	switch {
	case len(keys) == 0:
		return "none"
	case len(keys) <= maxShown:
		return fmt.Sprintf("%d (%s)", len(keys), strings.Join(keys, ", "))
	}
	return fmt.Sprintf("%d (%s, ...)", len(keys), strings.Join(keys[:maxShown], ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
