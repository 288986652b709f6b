// Package memory holds per-entity experience records and the ranking and
// prompt-formatting helpers dialogue/thought generation feeds on.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MaxPerEntity caps each entity's stream; the least salient record is evicted
// to make room.
const MaxPerEntity = 50

// Kind tags what sort of experience a record captures.
type Kind string

const (
	KindDialogue    Kind = "dialogue"
	KindObservation Kind = "observation"
	KindBirth       Kind = "birth"
	KindDeath       Kind = "death"
	KindThought     Kind = "thought"
	KindEncounter   Kind = "encounter"
)

// Record is one remembered experience.
type Record struct {
	Content    string    `json:"content"`
	Kind       Kind      `json:"kind"`
	RelatedIDs []string  `json:"related_ids,omitempty"`
	Salience   float64   `json:"salience"` // 0..1
	At         time.Time `json:"at"`
}

// Append adds a record to a stream. When the stream is full, the record
// replaces the least salient entry if it outranks it; otherwise it is dropped.
func Append(stream []Record, r Record) []Record {
	if len(stream) < MaxPerEntity {
		return append(stream, r)
	}
	minIdx := 0
	for i := 1; i < len(stream); i++ {
		if stream[i].Salience < stream[minIdx].Salience {
			minIdx = i
		}
	}
	if r.Salience > stream[minIdx].Salience {
		stream[minIdx] = r
	}
	return stream
}

// SelectRelevant ranks a stream against a set of related entity ids and
// returns up to limit records. Relevance blends salience with recency and a
// bonus for records touching the ids in question.
func SelectRelevant(all []Record, relatedIDs []string, limit int) []Record {
	if len(all) == 0 || limit <= 0 {
		return nil
	}
	related := make(map[string]bool, len(relatedIDs))
	for _, id := range relatedIDs {
		related[id] = true
	}

	now := time.Now()
	scored := make([]Record, len(all))
	copy(scored, all)
	score := func(r Record) float64 {
		s := r.Salience
		// Recency bonus: 0.5 for a fresh record, halved at ten minutes,
		// near zero after an hour.
		age := now.Sub(r.At).Minutes()
		if age < 0 {
			age = 0
		}
		s += 0.5 / (1 + age/10)
		for _, id := range r.RelatedIDs {
			if related[id] {
				s += 0.75
				break
			}
		}
		return s
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return score(scored[i]) > score(scored[j])
	})

	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit]
}

// ToPromptContext renders records as a newline-joined list for prompt
// assembly, oldest first so the narrative reads forward.
func ToPromptContext(records []Record) string {
	if len(records) == 0 {
		return ""
	}
	ordered := make([]Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].At.Before(ordered[j].At)
	})

	var b strings.Builder
	for _, r := range ordered {
		fmt.Fprintf(&b, "- %s\n", r.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
