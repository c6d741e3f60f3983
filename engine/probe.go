package engine

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Kind is the engine variant a source calls for.
type Kind int

const (
	KindAudio Kind = iota
	KindVideo
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "audio"
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".wav":  true,
	".aac":  true,
	".opus": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
}

// Detect decides which engine variant a source needs. The decision uses
// the media extension plus a container sniff for local files; the
// explicit has-video hint participates, and ties break toward video if
// either signal says yes.
func Detect(src Source) Kind {
	if src.HasVideoHint {
		return KindVideo
	}

	ext := sourceExtension(src)
	switch {
	case videoExtensions[ext]:
		return KindVideo
	case audioExtensions[ext]:
		return KindAudio
	}

	// Unknown extension: sniff local files. A container the tag reader
	// recognizes is plain audio; anything unidentifiable goes to the
	// video engine, which handles the wider format set.
	if src.File != "" {
		if sniffAudio(src.File) {
			return KindAudio
		}
		return KindVideo
	}

	// Remote with unknown extension (streams, redirect URLs).
	return KindVideo
}

func sourceExtension(src Source) string {
	if src.File != "" {
		return strings.ToLower(filepath.Ext(src.File))
	}
	if u, err := url.Parse(src.URL); err == nil {
		return strings.ToLower(filepath.Ext(u.Path))
	}
	return ""
}

func sniffAudio(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = tag.Identify(f)
	return err == nil
}
