package bench

import (
	"log"
	"strconv"
	"strings"

	"github.com/jianshu93/dartminhash-go/wmh"
)

// ParseLine parses one "id weight" dataset line (whitespace-separated) into
// a WeightedItem. If the id field does not parse as a uint64 it falls back
// to hashing the raw token with wmh.KeyIDString rather than rejecting the
// line outright, following go-minhash's stringIntToByte fallback-on-parse-
// failure precedent. A malformed id is logged, not returned as an error:
// this loader is bench/test scaffolding, not part of the core engine API,
// so it favors best-effort recovery over strict validation.
func ParseLine(line string) (wmh.WeightedItem, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return wmh.WeightedItem{}, false
	}
	w, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return wmh.WeightedItem{}, false
	}
	id, err := strconv.ParseUint(fields[0], 0, 64)
	if err != nil {
		log.Println("bench: could not parse id as uint64, hashing raw token instead:", fields[0])
		id = wmh.KeyIDString(fields[0])
	}
	return wmh.WeightedItem{ID: id, Weight: w}, true
}

// LoadDataset parses a newline-separated "id weight" dataset into a
// WeightedSet, skipping blank lines and lines that fail to parse entirely.
func LoadDataset(text string) wmh.WeightedSet {
	lines := strings.Split(text, "\n")
	set := make(wmh.WeightedSet, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if item, ok := ParseLine(line); ok {
			set = append(set, item)
		}
	}
	return set
}
