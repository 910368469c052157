package cli

import (
	"fmt"
	"strconv"

	"github.com/mrlokans/bookbar/internal/config"
)

// PrefsCommand prints the display preferences, or sets one of them.
type PrefsCommand struct {
	base
	Key   string
	Value string
}

// NewPrefsCommand creates a new PrefsCommand
func NewPrefsCommand(cfg *config.Config) *PrefsCommand {
	return &PrefsCommand{base: newBase(cfg)}
}

// ParseFlags parses command line flags
func (cmd *PrefsCommand) ParseFlags(args []string) error {
	fs := cmd.flags("prefs")
	fs.StringVar(&cmd.Key, "key", "", "Preference to set (dark_theme or dynamic_colors)")
	fs.StringVar(&cmd.Value, "value", "", "New value (true or false)")
	usage(fs, "prefs", "Show or change display preferences.", "prefs", "prefs -key dark_theme -value true")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (cmd.Key == "") != (cmd.Value == "") {
		return fmt.Errorf("-key and -value must be given together")
	}
	return nil
}

// Run executes the command
func (cmd *PrefsCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := cmd.timeoutContext()
	defer cancel()

	if cmd.Key != "" {
		value, err := strconv.ParseBool(cmd.Value)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", cmd.Value, err)
		}
		if err := app.Preferences.SetBoolean(ctx, cmd.Key, value); err != nil {
			return err
		}
	}

	prefs, err := app.Preferences.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "dark_theme:      %t\n", prefs.UseDarkTheme)
	fmt.Fprintf(cmd.out, "dynamic_colors:  %t\n", prefs.UseDynamicColor)
	return nil
}
