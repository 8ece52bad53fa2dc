package ambience

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// TrackTitle reads an ID3v2 title, falling back to the file name.
func TrackTitle(path string) string {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err == nil {
		defer tag.Close()
		title := strings.TrimSpace(tag.Title())
		if artist := strings.TrimSpace(tag.Artist()); title != "" && artist != "" {
			return artist + " - " + title
		}
		if title != "" {
			return title
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
