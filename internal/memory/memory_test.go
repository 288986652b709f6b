package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendEvictsLeastSalient(t *testing.T) {
	var stream []Record
	for i := 0; i < MaxPerEntity; i++ {
		stream = Append(stream, Record{
			Content:  fmt.Sprintf("memory %d", i),
			Salience: 0.5,
			At:       time.Now(),
		})
	}
	require.Len(t, stream, MaxPerEntity)

	// A dull memory is dropped on the floor.
	stream = Append(stream, Record{Content: "boring", Salience: 0.1})
	assert.Len(t, stream, MaxPerEntity)
	for _, r := range stream {
		assert.NotEqual(t, "boring", r.Content)
	}

	// A vivid one displaces something.
	stream = Append(stream, Record{Content: "vivid", Salience: 0.9})
	found := false
	for _, r := range stream {
		if r.Content == "vivid" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Len(t, stream, MaxPerEntity)
}

func TestSelectRelevantPrefersRelatedIDs(t *testing.T) {
	now := time.Now()
	all := []Record{
		{Content: "saw a rock", Kind: KindObservation, Salience: 0.3, At: now.Add(-time.Hour)},
		{Content: "chatted with pip", Kind: KindDialogue, RelatedIDs: []string{"pip"}, Salience: 0.3, At: now.Add(-time.Hour)},
		{Content: "it rained", Kind: KindObservation, Salience: 0.3, At: now.Add(-time.Hour)},
	}

	got := SelectRelevant(all, []string{"pip"}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "chatted with pip", got[0].Content)
}

func TestSelectRelevantRecencyBreaksTies(t *testing.T) {
	now := time.Now()
	all := []Record{
		{Content: "old", Salience: 0.5, At: now.Add(-3 * time.Hour)},
		{Content: "fresh", Salience: 0.5, At: now},
	}
	got := SelectRelevant(all, nil, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Content)
}

func TestSelectRelevantLimits(t *testing.T) {
	all := []Record{{Content: "a"}, {Content: "b"}}
	assert.Len(t, SelectRelevant(all, nil, 5), 2)
	assert.Nil(t, SelectRelevant(all, nil, 0))
	assert.Nil(t, SelectRelevant(nil, nil, 3))
}

func TestToPromptContextChronological(t *testing.T) {
	now := time.Now()
	records := []Record{
		{Content: "second", At: now},
		{Content: "first", At: now.Add(-time.Minute)},
	}
	assert.Equal(t, "- first\n- second", ToPromptContext(records))
	assert.Equal(t, "", ToPromptContext(nil))
}
