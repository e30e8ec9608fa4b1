package pricelist

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary is the static word data of the extractor: boilerplate phrases to
// drop, exact OCR garble fixes and the catalog of known product names.
type Vocabulary struct {
	Denylist []string `yaml:"denylist"`
	Garbles  []Garble `yaml:"garbles"`
	Catalog  []string `yaml:"catalog"`
}

// Garble is a case-insensitive substring replacement.
type Garble struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

var (
	defaultVocabOnce sync.Once
	defaultVocab     *Vocabulary
)

// DefaultVocabulary returns the embedded vocabulary. The value is shared and must
// not be modified.
func DefaultVocabulary() *Vocabulary {
	defaultVocabOnce.Do(func() {
		v, err := ParseVocabulary(defaultVocabularyYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded vocabulary: %v", err))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// ParseVocabulary decodes a YAML vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	return &v, nil
}

// LoadVocabulary reads a vocabulary file. An empty path yields the embedded
// default. Sections missing from the file keep their default content.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, err
	}
	def := DefaultVocabulary()
	if v.Denylist == nil {
		v.Denylist = def.Denylist
	}
	if v.Garbles == nil {
		v.Garbles = def.Garbles
	}
	if v.Catalog == nil {
		v.Catalog = def.Catalog
	}
	return v, nil
}
