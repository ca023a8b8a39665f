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
	"sort"
	"unicode/utf8"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"

	"github.com/streamr-io/streamr/base"
	"github.com/streamr-io/streamr/common/floats"
	"github.com/streamr-io/streamr/dataset"
)

// MaxCandidates caps the length of a recommendation list. Callers that
// show fewer results truncate further themselves.
const MaxCandidates = 201

// Rating is one (title, rating) pair supplied by a new user. Both fields
// are pointers so that a record missing a field is distinguishable from
// a zero value on the wire.
type Rating struct {
	Title *string  `json:"title"`
	Score *float64 `json:"rating"`
}

// ColdStart recommends catalog items to a user without interaction
// history. It builds a genre taste profile from the handful of titles
// the user rated and ranks the whole catalog against it. The catalog
// snapshot is read-only, so one ColdStart may serve concurrent calls.
type ColdStart struct {
	catalog *dataset.Catalog
}

func NewColdStart(catalog *dataset.Catalog) *ColdStart {
	return &ColdStart{catalog: catalog}
}

// Recommend returns up to MaxCandidates display titles ordered by
// affinity to the user's taste profile, excluding titles the user
// already rated. Invalid entries degrade to an empty list; records
// missing a field fail with a bad request error so callers can tell a
// malformed request from a valid empty answer.
func (c *ColdStart) Recommend(ratings []Rating) ([]string, error) {
	if len(ratings) == 0 {
		return nil, nil
	}
	// Missing fields are caller contract violations, checked before any
	// soft filtering.
	for _, r := range ratings {
		if r.Score == nil {
			return nil, errors.BadRequestf("rating record missing rating")
		}
		if r.Title == nil {
			return nil, errors.BadRequestf("rating record missing title")
		}
	}
	// Keep ratings inside [0, 5]. Deduplicate by canonical title, first
	// occurrence wins.
	type entry struct {
		canonical string
		score     float32
	}
	var entries []entry
	seen := mapset.NewThreadUnsafeSet[string]()
	tooLong := false
	for _, r := range ratings {
		score := float32(*r.Score)
		if math32.IsNaN(score) || score < 0 || score > 5 {
			continue
		}
		canonical := base.NormalizeTitle(*r.Title)
		if seen.Contains(canonical) {
			continue
		}
		seen.Add(canonical)
		if utf8.RuneCountInString(canonical) > base.MaxTitleLength {
			tooLong = true
		}
		entries = append(entries, entry{canonical: canonical, score: score})
	}
	if len(entries) == 0 || tooLong {
		return nil, nil
	}
	// The rated subset joins every catalog row sharing a canonical title
	// with the user, so duplicated catalog titles each contribute.
	type ratedRow struct {
		row   int32
		score float32
	}
	var matched []ratedRow
	ratedTitles := mapset.NewThreadUnsafeSet[string]()
	for _, e := range entries {
		rows := c.catalog.Match(e.canonical)
		if len(rows) == 0 {
			continue
		}
		ratedTitles.Add(e.canonical)
		for _, row := range rows {
			matched = append(matched, ratedRow{row: row, score: e.score})
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	// profile[g] = sum of rating over rated rows carrying genre g
	profile := make([]float32, c.catalog.CountGenres())
	var weight float32
	for _, m := range matched {
		floats.MulConstAdd(c.catalog.GetFeatures(int(m.row)), m.score, profile)
		weight += m.score
	}
	if weight == 0 {
		return nil, nil
	}
	// score every catalog row against the profile
	numItems := c.catalog.CountItems()
	scores := make([]float32, numItems)
	order := make([]int, numItems)
	for row := 0; row < numItems; row++ {
		scores[row] = floats.Dot(c.catalog.GetFeatures(row), profile) / weight
		order[row] = row
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	// drop rated titles, cap, return display titles
	items := c.catalog.GetItems()
	results := make([]string, 0, MaxCandidates)
	for _, row := range order {
		if ratedTitles.Contains(base.NormalizeTitle(items[row].Title)) {
			continue
		}
		results = append(results, items[row].Title)
		if len(results) == MaxCandidates {
			break
		}
	}
	return results, nil
}
