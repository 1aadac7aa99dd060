package adapter

import (
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
)

// Launcher opens item image and video URLs in an external program
type Launcher struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments for the viewer
	goos    string
	logger  *slog.Logger

	// start runs the command without waiting for it
	start func(name string, args ...string) error
}

// NewLauncher creates a Launcher. An empty command uses the OS default handler.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		goos:    runtime.GOOS,
		logger:  logger,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Launch opens rawURL. Only http and https URLs are accepted.
func (l *Launcher) Launch(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("not an http url: %q", rawURL)
	}

	name, args := l.commandFor(u.String())
	l.logger.Info("opening url", "command", name, "args", args)

	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}
	return nil
}

// commandFor builds the command line that opens target
func (l *Launcher) commandFor(target string) (string, []string) {
	if l.command != "" {
		args := append([]string{}, l.args...)
		return l.command, append(args, target)
	}

	switch l.goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "cmd", []string{"/c", "start", "", target}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{target}
	}
}
