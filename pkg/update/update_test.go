package update

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/stretchr/testify/assert"
)

// notice builds a notice for "Copyright (c) Acme Corp <years>".
func notice(years string, start, end int, sep string) *types.Notice {
	const prefix = "Copyright (c) Acme Corp "
	return &types.Notice{
		Owner: "Acme Corp",
		Start: start,
		End:   end,
		Sep:   sep,
		Text:  prefix + years,
		Years: types.Span{Start: len(prefix), End: len(prefix) + len(years)},
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		notice      *types.Notice
		year        int
		wantChanged bool
		wantLine    string
	}{
		{
			name:     "single year equal to current",
			notice:   notice("2024", 2024, 0, ""),
			year:     2024,
			wantLine: "Copyright (c) Acme Corp 2024",
		},
		{
			name:        "single year older than current",
			notice:      notice("2019", 2019, 0, ""),
			year:        2024,
			wantChanged: true,
			wantLine:    "Copyright (c) Acme Corp 2019-2024",
		},
		{
			name:     "range covering current",
			notice:   notice("2019-2022", 2019, 2022, "-"),
			year:     2022,
			wantLine: "Copyright (c) Acme Corp 2019-2022",
		},
		{
			name:     "range ending after current",
			notice:   notice("2019-2030", 2019, 2030, "-"),
			year:     2025,
			wantLine: "Copyright (c) Acme Corp 2019-2030",
		},
		{
			name:        "range ending before current",
			notice:      notice("2019-2022", 2019, 2022, "-"),
			year:        2025,
			wantChanged: true,
			wantLine:    "Copyright (c) Acme Corp 2019-2025",
		},
		{
			name:     "current before start is never rewritten backward",
			notice:   notice("2019", 2019, 0, ""),
			year:     2010,
			wantLine: "Copyright (c) Acme Corp 2019",
		},
		{
			name:        "range keeps its separator",
			notice:      notice("2015 – 2020", 2015, 2020, " – "),
			year:        2023,
			wantChanged: true,
			wantLine:    "Copyright (c) Acme Corp 2015 – 2023",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.notice, tt.year)
			assert.Equal(t, tt.wantChanged, d.Changed)
			assert.Equal(t, tt.wantLine, d.NewLine)
		})
	}
}

func TestDecide_PreservesSurroundingText(t *testing.T) {
	text := " * Copyright 2019 Acme Corp. All rights reserved. */"
	n := &types.Notice{Start: 2019, Text: text, Years: types.Span{Start: 13, End: 17}}

	d := Decide(n, 2024)
	assert.True(t, d.Changed)
	assert.Equal(t, " * Copyright 2019-2024 Acme Corp. All rights reserved. */", d.NewLine)
}

func TestDecide_Properties(t *testing.T) {
	for start := 2000; start <= 2010; start++ {
		for year := 1995; year <= 2015; year++ {
			single := notice(strconv.Itoa(start), start, 0, "")

			d := Decide(single, year)
			switch {
			case year > start:
				assert.True(t, d.Changed)
				next, _ := Extend(single, year)
				assert.Equal(t, start, next.Start)
				assert.Equal(t, year, next.End)
			default:
				assert.False(t, d.Changed)
				assert.Equal(t, single.Text, d.NewLine)
			}

			for end := start; end <= start+3; end++ {
				years := fmt.Sprintf("%d-%d", start, end)
				ranged := notice(years, start, end, "-")

				d := Decide(ranged, year)
				next, changed := Extend(ranged, year)
				assert.Equal(t, d.Changed, changed)
				if year <= end {
					assert.False(t, d.Changed, "start=%d end=%d year=%d", start, end, year)
					assert.Equal(t, ranged.Text, d.NewLine)
					continue
				}
				assert.True(t, d.Changed)
				assert.Equal(t, start, next.Start)
				assert.Equal(t, year, next.End)
			}
		}
	}
}

func TestDecide_Idempotent(t *testing.T) {
	n := notice("2019", 2019, 0, "")

	first := Decide(n, 2024)
	assert.True(t, first.Changed)

	// Re-parse the rewritten line by hand and decide again in the same year.
	again := notice("2019-2024", 2019, 2024, "-")
	assert.Equal(t, first.NewLine, again.Text)

	second := Decide(again, 2024)
	assert.False(t, second.Changed)
	assert.Equal(t, first.NewLine, second.NewLine)
}

func TestExtend_DoesNotMutate(t *testing.T) {
	n := notice("2019", 2019, 0, "")
	next, changed := Extend(n, 2024)

	assert.True(t, changed)
	assert.Equal(t, "2019-2024", next.YearText())
	assert.Equal(t, 0, n.End)
	assert.Equal(t, "", n.Sep)
}
