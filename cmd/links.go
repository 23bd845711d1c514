package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drdon1234/weibo-parser/internal/weibo"
)

var linksCmd = &cobra.Command{
	Use:   "links [text|file]",
	Short: "Extract Weibo URLs from free text",
	Long: `Scans text for Weibo URLs of any supported shape and prints the
deduplicated matches, one per line. Reads the given file when the argument
names one, the argument itself otherwise, or stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: linksRun,
}

func linksRun(cmd *cobra.Command, args []string) error {
	text, err := linksInput(args)
	if err != nil {
		return err
	}

	links := weibo.ExtractLinks(text)
	if len(links) == 0 {
		return fmt.Errorf("no weibo links found")
	}

	for _, link := range links {
		fmt.Println(link)
	}
	return nil
}

// linksInput resolves the text to scan from the argument or stdin.
func linksInput(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	arg := args[0]
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", arg, err)
		}
		return string(data), nil
	}
	return strings.TrimSpace(arg), nil
}
