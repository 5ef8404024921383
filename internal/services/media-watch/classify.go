package media_watch

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Kind int

const (
	KindMedia Kind = iota
	KindMovie
	KindTVShow
)

func (k Kind) Label() string {
	switch k {
	case KindMovie:
		return "Movie"
	case KindTVShow:
		return "TV Show"
	default:
		return "Media"
	}
}

func (k Kind) Emoji() string {
	switch k {
	case KindMovie:
		return "🎬"
	case KindTVShow:
		return "📺"
	default:
		return "📁"
	}
}

// Item is a piece of library content. Key groups every file of one title
// so a season copy produces a single message.
type Item struct {
	Kind Kind
	Name string
	Key  string
}

func (i Item) Message() string {
	return fmt.Sprintf("%s **New %s Added**\n%s", i.Kind.Emoji(), i.Kind.Label(), i.Name)
}

var markers = []struct {
	seg  string
	kind Kind
}{
	{"/movies/", KindMovie},
	{"/tvshows/", KindTVShow},
}

func Classify(path string) Item {
	p := filepath.ToSlash(path)
	for _, m := range markers {
		i := strings.LastIndex(p, m.seg)
		if i < 0 {
			continue
		}
		rest := p[i+len(m.seg):]
		name, _, _ := strings.Cut(rest, "/")
		if name == "" {
			break
		}
		return Item{Kind: m.kind, Name: name, Key: name}
	}
	return Item{Kind: KindMedia, Name: filepath.Base(path), Key: path}
}

// IsCandidate accepts directories and files with a known video extension.
func IsCandidate(path string, isDir bool, exts map[string]bool) bool {
	if isDir {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ext != "" && exts[ext]
}

func ExtensionSet(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
		if e != "" {
			m[e] = true
		}
	}
	return m
}
