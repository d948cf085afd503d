package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/ascii-view/internal/theme"
	"github.com/ensigniasec/ascii-view/internal/validate"
)

func openThemes() *theme.Manager {
	m, err := theme.NewManager(settingsFile)
	if err != nil {
		logrus.Fatal(err)
	}
	return m
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "List and manage color themes",
	Long:  "List preset and custom themes, or add, remove, select and reset custom themes. The selected theme is marked with *.",
	Run: func(cmd *cobra.Command, args []string) {
		openThemes().List(os.Stdout)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var themeAddCmd = &cobra.Command{
	Use:   "add NAME FOREGROUND BACKGROUND",
	Short: "Add a custom theme from two hex colors",
	Args:  cobra.ExactArgs(3), //nolint:mnd // name plus two colors by CLI contract
	Run: func(cmd *cobra.Command, args []string) {
		if err := openThemes().Add(args[0], args[1], args[2]); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Theme %s added\n", args[0])
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var themeRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a custom theme",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := openThemes().Remove(args[0]); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Theme %s removed\n", args[0])
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var themeUseCmd = &cobra.Command{
	Use:   "use NAME",
	Short: "Select the default theme",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := openThemes().Use(args[0]); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Theme set to %s\n", args[0])
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var themeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all custom themes and restore the default selection",
	Run: func(cmd *cobra.Command, args []string) {
		if err := openThemes().Reset(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintln(os.Stdout, "Themes reset")
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persisted settings",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStorage()
		out, err := json.MarshalIndent(st.Data, "", "  ")
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintln(os.Stdout, string(out))
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configSetServiceCmd = &cobra.Command{
	Use:   "set-service URL",
	Short: "Persist the conversion service base URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := validate.Var(args[0], "http_url"); err != nil {
			logrus.Fatalf("Invalid service URL: %q. Expected an http(s) URL (example: http://localhost:8000/api).", args[0])
		}
		st := openStorage()
		st.Data.ServiceURL = args[0]
		if err := st.Save(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Service URL set to %s\n", st.Data.ServiceURL)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings, keeping the client id",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStorage()
		if err := st.Reset(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintln(os.Stdout, "Settings reset")
	},
}
