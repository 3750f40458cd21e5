// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package safety classifies outgoing user text for crisis language and owns
// the canned responses shown when the filter trips.
package safety

import (
	"strings"
)

// ============================================================================
// CRISIS PHRASES
// ============================================================================

// crisisPhrases is the fixed list the filter matches against. Matching is
// case-insensitive substring containment with no word-boundary checks: the
// filter is deliberately blunt and false-positive tolerant. A message that
// merely contains one of these phrases inside a longer word still trips it.
var crisisPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"killing myself",
	"end my life",
	"ending my life",
	"end it all",
	"self-harm",
	"self harm",
	"hurt myself",
	"hurting myself",
	"cut myself",
	"cutting myself",
	"overdose",
	"don't want to live",
	"dont want to live",
	"don't want to be alive",
	"no reason to live",
	"better off dead",
	"better off without me",
	"want to die",
	"wish i was dead",
	"wish i were dead",
}

// ============================================================================
// CLASSIFICATION
// ============================================================================

// IsCrisis reports whether the text contains any crisis phrase.
// Side effect free. No stemming, no negation handling, no context awareness.
func IsCrisis(text string) bool {
	t := strings.ToLower(text)
	for _, phrase := range crisisPhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}

// Phrases returns a copy of the crisis phrase list, for display and tests.
func Phrases() []string {
	out := make([]string, len(crisisPhrases))
	copy(out, crisisPhrases)
	return out
}
