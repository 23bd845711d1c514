package player

import (
	"fmt"
	"os"
	"os/exec"
)

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool {
	_, err := exec.LookPath("vlc")
	return err == nil
}

// Play launches VLC and waits for it to exit.
func (v *VLC) Play(url, title string, hdr Headers) error {
	args := []string{
		url,
		"--meta-title", title,
		"--play-and-exit",
	}
	if hdr.UserAgent != "" {
		args = append(args, "--http-user-agent", hdr.UserAgent)
	}
	if hdr.Referer != "" {
		args = append(args, "--http-referrer", hdr.Referer)
	}

	cmd := exec.Command("vlc", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// VLC exits non-zero on user close
			return nil
		}
		return fmt.Errorf("running vlc: %w", err)
	}
	return nil
}
