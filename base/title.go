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

package base

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxTitleLength is the longest canonical title accepted from a caller.
const MaxTitleLength = 255

var (
	yearSuffix = regexp.MustCompile(`(\(\d{4}\)).*`)
	disallowed = regexp.MustCompile(`[^a-zA-Z0-9\s()]`)
	spaces     = regexp.MustCompile(`\s+`)

	// strip combining marks left behind by canonical decomposition
	accentRemover = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	// ligatures and letters that decomposition alone cannot fold to ASCII
	foldReplacer = strings.NewReplacer(
		"æ", "ae", "œ", "oe", "ß", "ss", "ø", "o",
		"đ", "d", "ð", "d", "ł", "l", "þ", "th", "ĳ", "ij",
	)
)

// NormalizeTitle canonicalizes a display title so that user input matches
// catalog entries despite case, accents, punctuation and spacing. Anything
// after a 4-digit parenthesized year is discarded, so "Heat (1995) [HD]"
// and "heat (1995)" share one canonical form. The result is used as an
// exact-match join key; no fuzzy matching happens downstream.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = yearSuffix.ReplaceAllString(title, "$1")
	if folded, _, err := transform.String(accentRemover, title); err == nil {
		title = folded
	}
	title = foldReplacer.Replace(title)
	title = disallowed.ReplaceAllString(title, "")
	title = spaces.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}
