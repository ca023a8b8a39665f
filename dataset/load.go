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
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/streamr-io/streamr/base/log"
)

// LoadCatalog reads the items table and the ratings table and returns an
// immutable snapshot. The items table drives matching and scoring; the
// ratings table only contributes per-item statistics.
func LoadCatalog(moviesPath, ratingsPath string) (*Catalog, error) {
	start := time.Now()
	items, err := loadItems(moviesPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	counts, sums, err := loadRatingStats(ratingsPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i := range items {
		if n := counts[items[i].ItemId]; n > 0 {
			items[i].RatingCount = n
			items[i].MeanRating = sums[items[i].ItemId] / float32(n)
		}
	}
	catalog := NewCatalog(start, items)
	log.Logger().Info("catalog loaded",
		zap.Int("n_items", catalog.CountItems()),
		zap.Int("n_genres", catalog.CountGenres()),
		zap.Duration("used_time", time.Since(start)))
	return catalog, nil
}

// loadItems parses rows of (movieId, title, pipe-delimited genres).
func loadItems(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3
	// header
	if _, err = reader.Read(); err != nil {
		return nil, errors.Annotatef(err, "read header of %s", path)
	}
	var items []Item
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Annotatef(err, "read %s", path)
		}
		itemId, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, errors.Annotatef(err, "parse item id %q", record[0])
		}
		items = append(items, Item{
			ItemId: itemId,
			Title:  record[1],
			Genres: strings.Split(record[2], "|"),
		})
	}
	return items, nil
}

// loadRatingStats scans rows of (userId, movieId, rating, timestamp) and
// accumulates per-item rating count and sum.
func loadRatingStats(path string) (counts map[int]int, sums map[int]float32, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	bar := progressbar.DefaultBytes(stat.Size(), "Load ratings")
	reader := csv.NewReader(io.TeeReader(f, bar))
	reader.FieldsPerRecord = 4
	// header
	if _, err = reader.Read(); err != nil {
		return nil, nil, errors.Annotatef(err, "read header of %s", path)
	}
	counts = make(map[int]int)
	sums = make(map[int]float32)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, errors.Annotatef(err, "read %s", path)
		}
		itemId, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, nil, errors.Annotatef(err, "parse item id %q", record[1])
		}
		rating, err := strconv.ParseFloat(record[2], 32)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "parse rating %q", record[2])
		}
		counts[itemId]++
		sums[itemId] += float32(rating)
	}
	_ = bar.Finish()
	return counts, sums, nil
}
