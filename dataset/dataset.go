// Copyright 2024 StreamR Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/streamr-io/streamr/base"
)

// noGenres is the sentinel MovieLens writes for untagged movies. It is
// not a genre: items carrying only this token get a zero feature vector.
const noGenres = "(no genres listed)"

// Item is one catalog row. Row order follows the items table and is the
// tie-break order during ranking.
type Item struct {
	ItemId      int
	Title       string
	Genres      []string
	RatingCount int
	MeanRating  float32
}

// Catalog is an immutable snapshot of the items table, loaded once and
// safely shared across concurrent recommendation calls. The genre
// vocabulary is fixed at construction, so every feature vector has the
// same length and a stable index per genre.
type Catalog struct {
	timestamp time.Time
	items     []Item
	genres    *GenreDict
	features  [][]float32
	index     map[string][]int32
}

// NewCatalog builds a snapshot from catalog rows. Duplicate genre tags
// on one row collapse; duplicate canonical titles all stay reachable
// through the title index.
func NewCatalog(timestamp time.Time, items []Item) *Catalog {
	c := &Catalog{
		timestamp: timestamp,
		items:     items,
		genres:    NewGenreDict(),
		features:  make([][]float32, len(items)),
		index:     make(map[string][]int32),
	}
	// first pass fixes the vocabulary in row order
	for _, item := range c.items {
		seen := mapset.NewThreadUnsafeSet[string]()
		for _, genre := range item.Genres {
			if genre == "" || genre == noGenres || seen.Contains(genre) {
				continue
			}
			seen.Add(genre)
			c.genres.Id(genre)
		}
	}
	// second pass builds fixed-length feature vectors and the join index
	for row, item := range c.items {
		c.features[row] = make([]float32, c.genres.Count())
		for _, genre := range item.Genres {
			if id, ok := c.genres.si[genre]; ok {
				c.features[row][id] = 1
			}
		}
		canonical := base.NormalizeTitle(item.Title)
		c.index[canonical] = append(c.index[canonical], int32(row))
	}
	return c
}

func (c *Catalog) GetTimestamp() time.Time {
	return c.timestamp
}

func (c *Catalog) GetItems() []Item {
	return c.items
}

func (c *Catalog) CountItems() int {
	return len(c.items)
}

// CountGenres returns the size of the genre vocabulary.
func (c *Catalog) CountGenres() int {
	return c.genres.Count()
}

func (c *Catalog) GetGenres() []string {
	return c.genres.Strings()
}

// GetFeatures returns the boolean genre vector of a catalog row.
func (c *Catalog) GetFeatures(row int) []float32 {
	return c.features[row]
}

// Match returns all catalog rows whose canonical title equals the
// canonical form of the given title. Matching is exact string equality
// on canonical form.
func (c *Catalog) Match(title string) []int32 {
	return c.index[base.NormalizeTitle(title)]
}
