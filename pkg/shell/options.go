package shell

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Options configure an interactive shell session. The zero value is not
// usable; start from DefaultOptions.
type Options struct {
	// Application names the embedding program. It defaults the prompt and
	// the history file name.
	Application string `toml:"application"`
	// Prompt is printed before each line. Defaults to "<application>> ".
	Prompt string `toml:"prompt"`
	// HistoryFile persists line history across sessions. Defaults to
	// ~/.<application>_history. Empty after defaulting disables history.
	HistoryFile string `toml:"history-file"`
	// HistoryLimit caps the number of persisted history lines.
	HistoryLimit int `toml:"history-limit"`
	// Color enables styled help keys and error markers.
	Color bool `toml:"color"`
}

// DefaultOptions returns the options for an application name.
func DefaultOptions(application string) Options {
	if application == "" {
		application = "gramline"
	}
	home, _ := os.UserHomeDir()
	return Options{
		Application:  application,
		Prompt:       application + "> ",
		HistoryFile:  filepath.Join(home, "."+application+"_history"),
		HistoryLimit: 500,
		Color:        true,
	}
}

// LoadOptions reads a TOML options file over the defaults for the given
// application. Unknown keys are an error so typos do not silently fall
// back to defaults.
func LoadOptions(path, application string) (Options, error) {
	opts := DefaultOptions(application)
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, fmt.Errorf("shell options %s: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return Options{}, fmt.Errorf("shell options %s: unknown key %q", path, undec[0].String())
	}
	if opts.Prompt == "" {
		opts.Prompt = opts.Application + "> "
	}
	return opts, nil
}
