// Package player launches an external media player on an extracted video URL.
// Weibo's CDN rejects requests without a weibo referer, so every player gets
// the referer and user-agent passed through its own header flags. All
// invocations use exec.Command with explicit argument slices.
package player

// Headers carries the request headers the CDN expects on playback traffic.
type Headers struct {
	UserAgent string
	Referer   string
}

// Player is the interface for media player implementations.
type Player interface {
	// Play starts playback of url and blocks until the player exits.
	Play(url, title string, hdr Headers) error

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	switch name {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: name}
	default:
		return &MPV{}
	}
}
