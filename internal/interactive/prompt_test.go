package interactive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/adamancini/appupdate/internal/update"
)

func code(n int64) *int64 { return &n }

func TestPrompterYesResponse(t *testing.T) {
	input := strings.NewReader("y\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	resp := p.prompt("Test prompt?")

	if resp != ResponseYes {
		t.Errorf("expected ResponseYes, got %v", resp)
	}
}

func TestPrompterNoResponse(t *testing.T) {
	input := strings.NewReader("n\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	resp := p.prompt("Test prompt?")

	if resp != ResponseNo {
		t.Errorf("expected ResponseNo, got %v", resp)
	}
}

func TestPrompterAllResponse(t *testing.T) {
	input := strings.NewReader("a\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	if resp := p.prompt("First prompt?"); resp != ResponseAll {
		t.Errorf("expected ResponseAll after 'a', got %v", resp)
	}

	// Subsequent prompts should auto-approve without reading input
	if resp := p.prompt("Second prompt?"); resp != ResponseYes {
		t.Errorf("expected ResponseYes (auto-approve), got %v", resp)
	}
}

func TestPrompterQuitResponse(t *testing.T) {
	input := strings.NewReader("q\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	resp := p.prompt("Test prompt?")

	if resp != ResponseQuit {
		t.Errorf("expected ResponseQuit, got %v", resp)
	}
}

func TestPrompterEOF(t *testing.T) {
	p := NewPrompterWithIO(strings.NewReader(""), &bytes.Buffer{})

	if resp := p.prompt("Test prompt?"); resp != ResponseQuit {
		t.Errorf("expected ResponseQuit on EOF, got %v", resp)
	}
}

func TestPrompterInvalidResponse(t *testing.T) {
	input := strings.NewReader("invalid\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	resp := p.prompt("Test prompt?")

	if resp != ResponseNo {
		t.Errorf("expected ResponseNo for invalid input, got %v", resp)
	}
	if !strings.Contains(output.String(), "Invalid response") {
		t.Errorf("expected 'Invalid response' message in output")
	}
}

func TestPrompterModes(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want Response
	}{
		{"approve all", ModeApproveAll, ResponseYes},
		{"decline all", ModeDeclineAll, ResponseNo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			p := NewPrompterWithIO(strings.NewReader("q\n"), output)
			p.SetMode(tt.mode)

			if resp := p.prompt("Test prompt?"); resp != tt.want {
				t.Errorf("prompt() = %v, want %v", resp, tt.want)
			}
			if output.Len() != 0 {
				t.Errorf("expected no output, got %q", output.String())
			}
		})
	}
}

func TestConfirmUpdate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		remote     *update.RemoteVersionInfo
		want       bool
		wantOutput []string
	}{
		{
			name:       "accept by code",
			input:      "y\n",
			remote:     &update.RemoteVersionInfo{VersionCode: code(6), VersionName: "1.3.0", ApkURL: "https://example.com/y.apk"},
			want:       true,
			wantOutput: []string{"available: 1.3.0 (code 6)", "https://example.com/y.apk"},
		},
		{
			name:       "decline store update",
			input:      "n\n",
			remote:     &update.RemoteVersionInfo{VersionName: "2.0.0", TrackViewURL: "https://apps.apple.com/app/id1"},
			want:       false,
			wantOutput: []string{"available: 2.0.0", "store:     https://apps.apple.com/app/id1"},
		},
		{
			name:       "quit",
			input:      "q\n",
			remote:     &update.RemoteVersionInfo{VersionCode: code(6)},
			want:       false,
			wantOutput: []string{"available: code 6", "Aborted."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			p := NewPrompterWithIO(strings.NewReader(tt.input), output)

			if got := p.ConfirmUpdate(tt.remote); got != tt.want {
				t.Errorf("ConfirmUpdate() = %v, want %v", got, tt.want)
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(output.String(), want) {
					t.Errorf("output %q should contain %q", output.String(), want)
				}
			}
		})
	}
}

func TestConfirmUpdateApproveAllIsSilent(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(strings.NewReader(""), output)
	p.SetMode(ModeApproveAll)

	if !p.ConfirmUpdate(&update.RemoteVersionInfo{VersionName: "1.3.0"}) {
		t.Error("expected approval")
	}
	if output.Len() != 0 {
		t.Errorf("expected no output, got %q", output.String())
	}
}

func TestAcknowledgeInstallPermission(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(strings.NewReader("y\n"), output)

	if !p.AcknowledgeInstallPermission("com.example.app") {
		t.Error("expected acknowledgment")
	}
	if !strings.Contains(output.String(), `"Install unknown apps" for com.example.app`) {
		t.Errorf("output = %q", output.String())
	}

	p = NewPrompterWithIO(strings.NewReader(""), &bytes.Buffer{})
	p.SetMode(ModeDeclineAll)
	if p.AcknowledgeInstallPermission("com.example.app") {
		t.Error("expected decline when input is unavailable")
	}
}

func TestAllAnswerCarriesAcrossPrompts(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(strings.NewReader("a\n"), output)

	if !p.ConfirmUpdate(&update.RemoteVersionInfo{VersionCode: code(6)}) {
		t.Fatal("expected approval")
	}
	if !p.AcknowledgeInstallPermission("com.example.app") {
		t.Error("expected 'all' to approve the permission prompt")
	}
}
