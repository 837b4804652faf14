// Package interactive provides interactive prompts for user confirmation.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/adamancini/appupdate/internal/update"
)

// Response represents the user's response to a prompt.
type Response int

const (
	ResponseYes  Response = iota // Proceed
	ResponseNo                   // Decline this prompt
	ResponseAll                  // Approve this and every later prompt
	ResponseQuit                 // Input closed or user quit
)

// Mode controls whether prompts read input at all.
type Mode int

const (
	ModeAsk        Mode = iota // Read answers from input
	ModeApproveAll             // Answer yes without asking (--yes)
	ModeDeclineAll             // Answer no without asking (no terminal)
)

// Prompter handles interactive prompts for update confirmation.
type Prompter struct {
	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner
	mode    Mode
}

// NewPrompter creates a prompter with stdin/stdout.
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stdout)
}

// NewPrompterWithIO creates a prompter with custom input/output (for testing).
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// SetMode switches between asking, approving and declining.
func (p *Prompter) SetMode(mode Mode) {
	p.mode = mode
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// prompt displays a question and reads the response.
func (p *Prompter) prompt(format string, args ...interface{}) Response {
	switch p.mode {
	case ModeApproveAll:
		return ResponseYes
	case ModeDeclineAll:
		return ResponseNo
	}

	_, _ = fmt.Fprintf(p.out, format, args...)
	_, _ = fmt.Fprint(p.out, " [y/n/a/q] ")

	if !p.scanner.Scan() {
		return ResponseQuit
	}

	input := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
	switch input {
	case "y", "yes":
		return ResponseYes
	case "n", "no":
		return ResponseNo
	case "a", "all":
		p.mode = ModeApproveAll
		return ResponseAll
	case "q", "quit":
		return ResponseQuit
	default:
		_, _ = fmt.Fprintln(p.out, "Invalid response, skipping.")
		return ResponseNo
	}
}

func approved(resp Response) bool {
	return resp == ResponseYes || resp == ResponseAll
}

// ConfirmUpdate shows the available release and asks whether to install it.
func (p *Prompter) ConfirmUpdate(remote *update.RemoteVersionInfo) bool {
	if p.mode == ModeAsk {
		_, _ = fmt.Fprintln(p.out, "\nUpdate available:")
		_, _ = fmt.Fprintf(p.out, "  available: %s\n", describeRemote(remote))
		if remote.ApkURL != "" {
			_, _ = fmt.Fprintf(p.out, "  package:   %s\n", remote.ApkURL)
		}
		if remote.TrackViewURL != "" {
			_, _ = fmt.Fprintf(p.out, "  store:     %s\n", remote.TrackViewURL)
		}
	}

	resp := p.prompt("  -> Install update?")
	if resp == ResponseQuit {
		_, _ = fmt.Fprintln(p.out, "\nAborted.")
	}
	return approved(resp)
}

// AcknowledgeInstallPermission explains the "Install unknown apps" setting
// and asks the user to confirm once it is enabled.
func (p *Prompter) AcknowledgeInstallPermission(packageName string) bool {
	if p.mode == ModeAsk {
		_, _ = fmt.Fprintln(p.out, "\nInstall permission required:")
		_, _ = fmt.Fprintf(p.out, "  Enable \"Install unknown apps\" for %s in the device settings.\n", packageName)
	}

	return approved(p.prompt("  -> Continue with the install?"))
}

func describeRemote(remote *update.RemoteVersionInfo) string {
	switch {
	case remote.HasVersionCode() && remote.VersionName != "":
		return fmt.Sprintf("%s (code %d)", remote.VersionName, *remote.VersionCode)
	case remote.HasVersionCode():
		return fmt.Sprintf("code %d", *remote.VersionCode)
	case remote.VersionName != "":
		return remote.VersionName
	default:
		return "unknown"
	}
}
