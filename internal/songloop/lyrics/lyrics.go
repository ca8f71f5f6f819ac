// Package lyrics parses LRC-style timed lyric text and produces the bounded
// excerpt window revealed to guessers during a round.
package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fastrand"
)

// tailPadding extends the last line, which has no successor to derive an
// end time from.
const tailPadding = 5000

var timeTagRe = regexp.MustCompile(`\[(\d{1,2}):(\d{2})(?:[.:](\d{1,3}))?\]`)

// Line is a single timed lyric line. Times are milliseconds from song start.
type Line struct {
	Time    int64  `json:"time"`
	EndTime int64  `json:"endTime"`
	Text    string `json:"text"`
}

// Slice is a contiguous excerpt of lines together with its time bounds.
type Slice struct {
	Lines      []Line `json:"lines"`
	StartIndex int    `json:"startIndex"`
	StartTime  int64  `json:"startTime"`
	EndTime    int64  `json:"endTime"`
}

// Parse extracts timed lines from LRC text, ordered by start time. A line
// carrying several time tags is emitted once per tag. Malformed input yields
// an empty result, never an error.
func Parse(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(text, "\n") {
		tags := timeTagRe.FindAllStringSubmatch(raw, -1)
		if len(tags) == 0 {
			continue
		}

		content := strings.TrimSpace(timeTagRe.ReplaceAllString(raw, ""))
		if content == "" {
			continue
		}

		for _, tag := range tags {
			ms, ok := tagMillis(tag)
			if !ok {
				continue
			}
			lines = append(lines, Line{Time: ms, Text: content})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})

	for i := range lines {
		if i+1 < len(lines) {
			lines[i].EndTime = lines[i+1].Time
		} else {
			lines[i].EndTime = lines[i].Time + tailPadding
		}
	}

	return lines
}

func tagMillis(tag []string) (int64, bool) {
	minutes, err := strconv.Atoi(tag[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(tag[2])
	if err != nil || seconds >= 60 {
		return 0, false
	}

	ms := int64(minutes)*60_000 + int64(seconds)*1000
	if tag[3] != "" {
		frac, err := strconv.Atoi(tag[3])
		if err != nil {
			return 0, false
		}
		switch len(tag[3]) {
		case 1:
			ms += int64(frac) * 100
		case 2:
			ms += int64(frac) * 10
		default:
			ms += int64(frac)
		}
	}

	return ms, true
}

// Excerpt picks a uniformly random contiguous window of lineCount lines,
// keeping clear of the very start and end of the song. Returns nil when the
// lyrics cannot yield a window of the requested size.
func Excerpt(lines []Line, lineCount int) *Slice {
	if lineCount <= 0 || len(lines) < lineCount {
		return nil
	}

	lo, hi := windowBounds(len(lines), lineCount)
	start := lo
	if hi > lo {
		start = lo + int(fastrand.Uint32n(uint32(hi-lo+1)))
	}

	window := make([]Line, lineCount)
	copy(window, lines[start:start+lineCount])

	return &Slice{
		Lines:      window,
		StartIndex: start,
		StartTime:  window[0].Time,
		EndTime:    window[lineCount-1].EndTime,
	}
}

// windowBounds computes the inclusive range of valid start indices: at least
// min(2, 10% of length) in, and ending short of the final two lines where
// possible.
func windowBounds(length, lineCount int) (lo, hi int) {
	lo = length / 10
	if lo > 2 {
		lo = 2
	}

	hi = length - lineCount - 2
	if hi < 0 {
		hi = 0
	}
	if lo > hi {
		lo = hi
	}

	return lo, hi
}
