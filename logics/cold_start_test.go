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

package logics

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"

	"github.com/streamr-io/streamr/dataset"
)

func newTestCatalog() *dataset.Catalog {
	return dataset.NewCatalog(time.Now(), []dataset.Item{
		{ItemId: 1, Title: "Toy Story (1995)", Genres: []string{"Animation", "Comedy"}},
		{ItemId: 2, Title: "Jumanji (1995)", Genres: []string{"Adventure", "Fantasy"}},
		{ItemId: 3, Title: "GoldenEye (1995)", Genres: []string{"Action", "Adventure"}},
		{ItemId: 4, Title: "Antz (1998)", Genres: []string{"Animation", "Comedy"}},
		{ItemId: 5, Title: "Heat (1995)", Genres: []string{"Action", "Crime"}},
	})
}

func rating(title string, score float64) Rating {
	return Rating{Title: &title, Score: &score}
}

func TestColdStartEmptyInput(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	titles, err := coldStart.Recommend(nil)
	assert.NoError(t, err)
	assert.Empty(t, titles)
}

func TestColdStartInvalidRatingsDropped(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	// all ratings outside [0, 5]
	titles, err := coldStart.Recommend([]Rating{
		rating("Toy Story (1995)", 5.5),
		rating("Jumanji (1995)", -1),
	})
	assert.NoError(t, err)
	assert.Empty(t, titles)
	// a single valid rating among invalid ones still recommends
	titles, err = coldStart.Recommend([]Rating{
		rating("Toy Story (1995)", 6),
		rating("Toy Story (1995)", 5),
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, titles)
}

func TestColdStartNoCatalogOverlap(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	// partial, reformatted or unknown titles never match
	titles, err := coldStart.Recommend([]Rating{
		rating("Toy Story", 5),
		rating("1995 Toy Story", 5),
		rating("The Matrix (1999)", 5),
	})
	assert.NoError(t, err)
	assert.Empty(t, titles)
}

func TestColdStartStructuralErrors(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	title := "Toy Story (1995)"
	score := 5.0
	_, err := coldStart.Recommend([]Rating{{Title: &title}})
	assert.True(t, errors.IsBadRequest(err))
	_, err = coldStart.Recommend([]Rating{{Score: &score}})
	assert.True(t, errors.IsBadRequest(err))
	// structural errors beat soft-empty: the bad record poisons the request
	_, err = coldStart.Recommend([]Rating{rating(title, 5), {Title: &title}})
	assert.True(t, errors.IsBadRequest(err))
}

func TestColdStartScenario(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	titles, err := coldStart.Recommend([]Rating{rating("Toy Story (1995)", 5)})
	assert.NoError(t, err)
	// the rated title is excluded; the genre-sharing item leads; items
	// with no overlap follow in catalog row order
	assert.Equal(t, []string{"Antz (1998)", "Jumanji (1995)", "GoldenEye (1995)", "Heat (1995)"}, titles)
}

func TestColdStartCaseInsensitive(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	lower, err := coldStart.Recommend([]Rating{rating("toy story (1995)", 5)})
	assert.NoError(t, err)
	upper, err := coldStart.Recommend([]Rating{rating("TOY STORY (1995)", 5)})
	assert.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestColdStartLongTitleGuard(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	// one over-long title empties the whole request, valid entries included
	titles, err := coldStart.Recommend([]Rating{
		rating("Toy Story (1995)", 5),
		rating(strings.Repeat("a", 300), 4),
	})
	assert.NoError(t, err)
	assert.Empty(t, titles)
}

func TestColdStartDuplicateTitleFirstWins(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	// the duplicate's zero rating must not be the one kept, otherwise the
	// zero-weight guard would empty the result
	titles, err := coldStart.Recommend([]Rating{
		rating("Toy Story (1995)", 5),
		rating("  toy story (1995)", 0),
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Antz (1998)", "Jumanji (1995)", "GoldenEye (1995)", "Heat (1995)"}, titles)
}

func TestColdStartZeroWeightProfile(t *testing.T) {
	coldStart := NewColdStart(newTestCatalog())
	titles, err := coldStart.Recommend([]Rating{rating("Toy Story (1995)", 0)})
	assert.NoError(t, err)
	assert.Empty(t, titles)
}

func TestColdStartDuplicateCatalogTitles(t *testing.T) {
	catalog := dataset.NewCatalog(time.Now(), []dataset.Item{
		{ItemId: 1, Title: "Toy Story (1995)", Genres: []string{"Animation"}},
		{ItemId: 2, Title: "Toy Story (1995) [IMAX]", Genres: []string{"Animation"}},
		{ItemId: 3, Title: "Antz (1998)", Genres: []string{"Animation"}},
	})
	coldStart := NewColdStart(catalog)
	titles, err := coldStart.Recommend([]Rating{rating("Toy Story (1995)", 5)})
	assert.NoError(t, err)
	// both duplicate rows join the rated subset and both are excluded
	assert.Equal(t, []string{"Antz (1998)"}, titles)
}

func TestColdStartCap(t *testing.T) {
	items := make([]dataset.Item, 0, 250)
	for i := 0; i < 250; i++ {
		items = append(items, dataset.Item{
			ItemId: i,
			Title:  fmt.Sprintf("Film %03d (2000)", i),
			Genres: []string{"Drama"},
		})
	}
	coldStart := NewColdStart(dataset.NewCatalog(time.Now(), items))
	titles, err := coldStart.Recommend([]Rating{rating("Film 000 (2000)", 5)})
	assert.NoError(t, err)
	assert.Len(t, titles, MaxCandidates)
	// stable sort keeps catalog row order among equal scores
	assert.Equal(t, "Film 001 (2000)", titles[0])
}
