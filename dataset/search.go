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
	"sort"
	"strings"
)

// Search returns up to n catalog items whose display title contains the
// query, case-insensitively. Results are ordered by rating count so the
// widely seen titles come first; catalog row order breaks ties.
func (c *Catalog) Search(query string, n int) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || n <= 0 {
		return nil
	}
	var hits []Item
	for _, item := range c.items {
		if strings.Contains(strings.ToLower(item.Title), query) {
			hits = append(hits, item)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].RatingCount > hits[j].RatingCount
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits
}
