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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCatalog(t *testing.T) {
	timestamp := time.Now()
	catalog := NewCatalog(timestamp, []Item{
		{ItemId: 1, Title: "Toy Story (1995)", Genres: []string{"Animation", "Comedy"}},
		{ItemId: 2, Title: "Jumanji (1995)", Genres: []string{"Adventure", "Fantasy"}},
		{ItemId: 3, Title: "GoldenEye (1995)", Genres: []string{"Action", "Adventure"}},
		{ItemId: 4, Title: "Nobody Rated This (2001)", Genres: []string{noGenres}},
	})
	assert.Equal(t, timestamp, catalog.GetTimestamp())
	assert.Equal(t, 4, catalog.CountItems())
	// vocabulary in row order, sentinel excluded
	assert.Equal(t, []string{"Animation", "Comedy", "Adventure", "Fantasy", "Action"}, catalog.GetGenres())
	assert.Equal(t, 5, catalog.CountGenres())
	// fixed-length boolean vectors
	assert.Equal(t, []float32{1, 1, 0, 0, 0}, catalog.GetFeatures(0))
	assert.Equal(t, []float32{0, 0, 1, 1, 0}, catalog.GetFeatures(1))
	assert.Equal(t, []float32{0, 0, 1, 0, 1}, catalog.GetFeatures(2))
	assert.Equal(t, []float32{0, 0, 0, 0, 0}, catalog.GetFeatures(3))
}

func TestCatalogMatch(t *testing.T) {
	catalog := NewCatalog(time.Now(), []Item{
		{ItemId: 1, Title: "Toy Story (1995)", Genres: []string{"Animation"}},
		{ItemId: 2, Title: "Amélie (2001)", Genres: []string{"Comedy", "Romance"}},
		{ItemId: 3, Title: "Toy Story (1995) [remastered]", Genres: []string{"Animation"}},
	})
	// matching runs on canonical titles from both sides
	assert.Equal(t, []int32{0, 2}, catalog.Match("  TOY STORY (1995)"))
	assert.Equal(t, []int32{1}, catalog.Match("Amelie (2001)"))
	// partial or reformatted titles never match
	assert.Empty(t, catalog.Match("Toy Story"))
	assert.Empty(t, catalog.Match("1995 Toy Story"))
}

func TestCatalogDuplicateGenres(t *testing.T) {
	catalog := NewCatalog(time.Now(), []Item{
		{ItemId: 1, Title: "Up (2009)", Genres: []string{"Animation", "Animation", ""}},
	})
	assert.Equal(t, []string{"Animation"}, catalog.GetGenres())
	assert.Equal(t, []float32{1}, catalog.GetFeatures(0))
	assert.Equal(t, 1, catalog.genres.Freq(0))
}

func TestCatalogSearch(t *testing.T) {
	catalog := NewCatalog(time.Now(), []Item{
		{ItemId: 1, Title: "Toy Story (1995)", Genres: []string{"Animation"}, RatingCount: 10},
		{ItemId: 2, Title: "Toy Story 2 (1999)", Genres: []string{"Animation"}, RatingCount: 42},
		{ItemId: 3, Title: "Jumanji (1995)", Genres: []string{"Adventure"}, RatingCount: 7},
	})
	hits := catalog.Search("toy story", 10)
	assert.Len(t, hits, 2)
	// ordered by rating count descending
	assert.Equal(t, 2, hits[0].ItemId)
	assert.Equal(t, 1, hits[1].ItemId)
	// cap
	assert.Len(t, catalog.Search("toy story", 1), 1)
	assert.Empty(t, catalog.Search("", 10))
	assert.Empty(t, catalog.Search("matrix", 10))
}
