package knowledge

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one brand fact from the source corpus.
type Document struct {
	Brand   string `yaml:"brand"`
	Content string `yaml:"content"`
}

// corpusFile is the on-disk shape of the brand-facts corpus.
type corpusFile struct {
	Facts []Document `yaml:"facts"`
}

// LoadCorpus reads the YAML brand-facts corpus the index is built from.
func LoadCorpus(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus %s: %w", path, err)
	}

	var cf corpusFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("cannot parse corpus %s: %w", path, err)
	}

	docs := make([]Document, 0, len(cf.Facts))
	for i, d := range cf.Facts {
		d.Brand = strings.TrimSpace(d.Brand)
		d.Content = strings.TrimSpace(d.Content)
		if d.Content == "" {
			return nil, fmt.Errorf("corpus %s: fact %d has no content", path, i)
		}
		docs = append(docs, d)
	}
	return docs, nil
}
