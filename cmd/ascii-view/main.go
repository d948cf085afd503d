package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/ascii-view/internal/api"
	"github.com/ensigniasec/ascii-view/internal/layout"
	"github.com/ensigniasec/ascii-view/internal/storage"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Used for flags.
	settingsFile = storage.DefaultPath
	verbose      bool
	jsonOutput   bool
	anonymous    bool
	serviceURL   string

	columns    int
	themeName  string
	widthPx    float64
	heightPx   float64
	minFontPx  float64
	maxFontPx  float64
	aspect     float64
	lineHeight float64

	rootCmd = &cobra.Command{
		Use:   "ascii-view",
		Short: "Convert images to character art and fit it to the space available.",
		Long: `ascii-view sends images to an ASCII conversion service and shows the resulting character grid ` +
			`at the largest font size that fits the viewport, in the terminal or in a browser.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else if jsonOutput {
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr to avoid polluting stdout, especially for --json output.
	logrus.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format instead of text")
	rootCmd.PersistentFlags().
		BoolVar(&anonymous, "anonymous", false, "Optional: Do not send the client id to the conversion service")
	// Alias for --anonymous
	rootCmd.PersistentFlags().BoolVar(&anonymous, "anon", false, "Alias of --anonymous")
	rootCmd.PersistentFlags().
		StringVar(&serviceURL, "service-url", "", "Conversion service base URL (overrides settings)")
	rootCmd.PersistentFlags().
		StringVar(&settingsFile, "settings-file", storage.DefaultPath, "Path of the settings file")

	for _, c := range []*cobra.Command{convertCmd, viewCmd, serveCmd} {
		addLayoutFlags(c)
	}
	serveCmd.Flags().StringVar(&listenAddr, "addr", "127.0.0.1:8080", "Address to listen on")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(configCmd)

	themeCmd.AddCommand(themeAddCmd)
	themeCmd.AddCommand(themeRemoveCmd)
	themeCmd.AddCommand(themeUseCmd)
	themeCmd.AddCommand(themeResetCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetServiceCmd)
	configCmd.AddCommand(configResetCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = api.BuildVersion
	rootCmd.Annotations = map[string]string{"commit": api.BuildCommit, "date": api.BuildDate}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func addLayoutFlags(c *cobra.Command) {
	c.Flags().IntVarP(&columns, "columns", "c", 0, "Target column count (10-400, defaults to settings)")
	c.Flags().StringVarP(&themeName, "theme", "t", "", "Theme name (defaults to settings)")
	c.Flags().Float64Var(&widthPx, "width", 0, "Viewport width in pixels")
	c.Flags().Float64Var(&heightPx, "height", 0, "Viewport height in pixels")
	c.Flags().Float64Var(&minFontPx, "min-font", 0, "Minimum font size in pixels")
	c.Flags().Float64Var(&maxFontPx, "max-font", 0, "Maximum font size in pixels")
	c.Flags().Float64Var(&aspect, "aspect", 0, "Character width to font size ratio")
	c.Flags().Float64Var(&lineHeight, "line-height", 0, "Line height multiplier")
}

// resolveBounds starts from the stored bounds and applies the flags the user set.
func resolveBounds(cmd *cobra.Command, st *storage.Storage) (layout.ViewportBounds, error) {
	b := st.Data.Bounds
	overrides := []struct {
		flag string
		dst  *float64
		val  float64
	}{
		{"width", &b.MaxWidthPx, widthPx},
		{"height", &b.MaxHeightPx, heightPx},
		{"min-font", &b.MinFontSizePx, minFontPx},
		{"max-font", &b.MaxFontSizePx, maxFontPx},
		{"aspect", &b.CharAspectRatio, aspect},
		{"line-height", &b.LineHeightMultiplier, lineHeight},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.dst = o.val
		}
	}
	return b, b.Validate()
}

// resolveColumns prefers the flag, then settings.
func resolveColumns(cmd *cobra.Command, st *storage.Storage) int {
	if cmd.Flags().Changed("columns") {
		return columns
	}
	return st.Data.Columns
}

func resolveThemeName(cmd *cobra.Command, st *storage.Storage) string {
	if cmd.Flags().Changed("theme") {
		return themeName
	}
	return st.Data.Theme
}

func openStorage() *storage.Storage {
	st, err := storage.NewOrExistingStorage(settingsFile)
	if err != nil {
		logrus.Fatalf("Unable to open or create settings: %v", err)
	}
	return st
}

// newClient builds the conversion client from flags and settings.
func newClient(st *storage.Storage) *api.Client {
	base := serviceURL
	if base == "" {
		base = st.Data.ServiceURL
	}
	id := api.Identity{ClientID: st.Data.ClientID, Anonymous: anonymous}
	c, err := api.NewClient(api.WithBaseURL(base), api.WithDefaultIdentity(id))
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.Debugf("using conversion service %s", c.BaseURL())
	return c
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logrus.Fatal(err)
	}
}

func main() {
	Execute()
}
