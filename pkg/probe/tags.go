package probe

import (
	"os"

	"github.com/dhowden/tag"
)

type tagsMetadata struct {
	artist string
	title  string
}

func readTags(filepath string) (tagsMetadata, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return tagsMetadata{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return tagsMetadata{}, err
	}

	return tagsMetadata{
		artist: m.Artist(),
		title:  m.Title(),
	}, nil
}
