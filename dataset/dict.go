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

// GenreDict maps genre tags to dense indices in insertion order. The
// index of a tag never changes once assigned, so feature vectors built
// from one dictionary stay comparable.
type GenreDict struct {
	si  map[string]int
	is  []string
	cnt []int
}

func NewGenreDict() (d *GenreDict) {
	d = &GenreDict{map[string]int{}, []string{}, []int{}}
	return
}

func (d *GenreDict) Count() int {
	return len(d.is)
}

// Id returns the index of a genre, assigning the next free index on
// first sight, and counts the occurrence.
func (d *GenreDict) Id(s string) (y int) {
	if y, ok := d.si[s]; ok {
		d.cnt[y]++
		return y
	}

	y = len(d.is)
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 1)
	return
}

func (d *GenreDict) String(id int) (s string, ok bool) {
	if id >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

// Freq returns how many items carry the genre.
func (d *GenreDict) Freq(id int) int {
	if id >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}

// Strings returns all genres in index order.
func (d *GenreDict) Strings() []string {
	return d.is
}
