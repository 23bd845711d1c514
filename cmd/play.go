package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drdon1234/weibo-parser/internal/media"
	"github.com/drdon1234/weibo-parser/internal/player"
	"github.com/drdon1234/weibo-parser/internal/weibo"
)

var flagPlayer string

var playCmd = &cobra.Command{
	Use:   "play <url>",
	Short: "Parse a Weibo video URL and play it in an external player",
	Args:  cobra.ExactArgs(1),
	RunE:  playRun,
}

func init() {
	playCmd.Flags().StringVarP(&flagPlayer, "player", "p", "", "Player to use (mpv, vlc, iina, celluloid)")
}

func playRun(cmd *cobra.Command, args []string) error {
	parser := weibo.New(cfg.UserAgent)

	result, err := parser.Parse(args[0])
	if err != nil {
		return err
	}
	if result.Kind != media.Video || len(result.MediaURLs) == 0 {
		return fmt.Errorf("post has no playable video (media type: %s)", result.Kind)
	}

	name := flagPlayer
	if name == "" {
		name = cfg.Player
	}
	p := player.New(name)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", p.Name())
	}

	title := result.Description
	if title == "" {
		title = result.SourceURL
	}

	debugf("playing %s via %s", result.MediaURLs[0], p.Name())
	return p.Play(result.MediaURLs[0], title, player.Headers{
		UserAgent: cfg.UserAgent,
		Referer:   "https://weibo.com/",
	})
}
