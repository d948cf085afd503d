package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/ascii-view/internal/batch"
	"github.com/ensigniasec/ascii-view/internal/theme"
	"github.com/ensigniasec/ascii-view/internal/tui"
	"github.com/ensigniasec/ascii-view/internal/web"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var listenAddr string

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var convertCmd = &cobra.Command{
	Use:   "convert IMAGE|DIR...",
	Short: "Convert images to character art and print it with the fitted layout.",
	Long: "Convert one or more images through the conversion service. Directories are searched for images. " +
		"Each result is normalized and fitted to the viewport bounds; --json prints the full report.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStorage()
		bounds, err := resolveBounds(cmd, st)
		if err != nil {
			logrus.Fatal(err)
		}
		paths, err := batch.ExpandInputs(cmd.Context(), args)
		if err != nil {
			logrus.Fatal(err)
		}

		runner, err := batch.NewRunner(newClient(st), bounds, resolveColumns(cmd, st),
			batch.WithResultNotifier(func(r batch.Result) {
				if r.OK() {
					logrus.Debugf("converted %s: %s", r.Path, batch.LayoutLine(r))
				}
			}),
		)
		if err != nil {
			logrus.Fatal(err)
		}
		summary, err := runner.Run(cmd.Context(), paths)
		if err != nil {
			logrus.Fatal(err)
		}
		if err := batch.PrintSummary(os.Stdout, summary, jsonOutput); err != nil {
			logrus.Fatal(err)
		}
		if summary.Converted == 0 {
			logrus.Fatalf("%d of %d images failed to convert", summary.Failed, summary.Total)
		}
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var viewCmd = &cobra.Command{
	Use:   "view IMAGE",
	Short: "Show an image as character art in an interactive terminal viewer.",
	Long: "Open a full-screen viewer that refits the art whenever the terminal is resized. " +
		"Use +/- to change the column count, t to switch themes, arrows to scroll and q to quit.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			logrus.Fatal("Cannot use --json with the interactive viewer")
		}
		st := openStorage()
		bounds, err := resolveBounds(cmd, st)
		if err != nil {
			logrus.Fatal(err)
		}
		th, err := theme.Resolve(resolveThemeName(cmd, st), st.Data.CustomThemes)
		if err != nil {
			logrus.Fatal(err)
		}
		path, err := batch.ExpandPath(args[0])
		if err != nil {
			logrus.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logrus.Fatal(err)
		}

		cfg := tui.Config{
			Converter:    newClient(st),
			Filename:     path,
			Image:        data,
			Columns:      resolveColumns(cmd, st),
			Bounds:       bounds,
			Cell:         st.Data.Cell,
			Theme:        th,
			CustomThemes: st.Data.CustomThemes,
			Anonymous:    anonymous,
		}
		if err := tui.Run(cmd.Context(), cfg); err != nil {
			logrus.Fatalf("viewer failed: %v", err)
		}
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a web page that converts uploads and fits them to the browser window.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st := openStorage()
		bounds, err := resolveBounds(cmd, st)
		if err != nil {
			logrus.Fatal(err)
		}
		h, err := web.NewHandler(newClient(st), web.Options{
			Bounds:       bounds,
			Columns:      resolveColumns(cmd, st),
			Theme:        resolveThemeName(cmd, st),
			CustomThemes: st.Data.CustomThemes,
		})
		if err != nil {
			logrus.Fatal(err)
		}
		srv := web.NewServer(listenAddr, web.NewRouter(h))
		if err := web.Serve(cmd.Context(), srv); err != nil {
			logrus.Fatal(err)
		}
	},
}
