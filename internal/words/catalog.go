// Package words loads the word-category data the engine draws from.
// The content itself is an opaque "category -> candidate words" source;
// the engine never inspects individual words.
package words

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

type Category struct {
	ID    string   `json:"id"`
	Name  string   `json:"categoryName"`
	Words []string `json:"words"`
}

// Info is the client-facing view of a category, without the words.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Catalog struct {
	byID map[string]Category
	ids  []string
}

// Load reads every *.json file in dir as one category; the file stem
// becomes the category id. Files that fail to parse or carry no words
// are skipped with a warning rather than failing the whole catalog.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read category dir: %w", err)
	}

	c := &Catalog{byID: make(map[string]Category)}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read category %s: %w", e.Name(), err)
		}
		var cat Category
		if err := json.Unmarshal(raw, &cat); err != nil {
			log.Warn().Err(err).Str("module", "words").Str("file", e.Name()).Msg("skipping unparsable category")
			continue
		}
		if len(cat.Words) == 0 {
			log.Warn().Str("module", "words").Str("file", e.Name()).Msg("skipping empty category")
			continue
		}
		cat.ID = strings.TrimSuffix(e.Name(), ".json")
		if cat.Name == "" {
			cat.Name = cat.ID
		}
		c.byID[cat.ID] = cat
		c.ids = append(c.ids, cat.ID)
	}
	sort.Strings(c.ids)

	log.Info().Str("module", "words").Int("categories", len(c.ids)).Msg("word categories loaded")
	return c, nil
}

func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

func (c *Catalog) Get(id string) (Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

// List returns the id/name pairs broadcast to clients alongside room
// settings snapshots.
func (c *Catalog) List() []Info {
	out := make([]Info, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, Info{ID: id, Name: c.byID[id].Name})
	}
	return out
}

// Draw picks a uniformly random enabled category, then a uniformly
// random word from it. Enabled ids unknown to the catalog are ignored.
func (c *Catalog) Draw(rng *rand.Rand, enabled []string) (categoryName, word string, err error) {
	known := make([]string, 0, len(enabled))
	for _, id := range enabled {
		if _, ok := c.byID[id]; ok {
			known = append(known, id)
		}
	}
	if len(known) == 0 {
		return "", "", domain.ErrNoCategories
	}
	cat := c.byID[known[rng.Intn(len(known))]]
	return cat.Name, cat.Words[rng.Intn(len(cat.Words))], nil
}
