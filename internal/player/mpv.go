package player

import (
	"fmt"
	"os"
	"os/exec"
)

// MPV implements the Player interface for mpv.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// Play launches mpv and waits for it to exit.
func (m *MPV) Play(url, title string, hdr Headers) error {
	args := []string{
		url,
		"--force-media-title=" + title,
		"--really-quiet",
	}
	if hdr.UserAgent != "" {
		args = append(args, "--user-agent="+hdr.UserAgent)
	}
	if hdr.Referer != "" {
		args = append(args, "--http-header-fields=Referer: "+hdr.Referer)
	}

	cmd := exec.Command("mpv", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		// mpv returns non-zero on user quit, which is normal
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 4 {
			return nil
		}
		return fmt.Errorf("running mpv: %w", err)
	}
	return nil
}
