package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// BlockType distinguishes the four legal same-day tour combinations.
type BlockType string

const (
	BlockSingle        BlockType = "1er"
	BlockDoubleRegular BlockType = "2er-reg"
	BlockDoubleSplit   BlockType = "2er-split"
	BlockTriple        BlockType = "3er"
)

var blockIDPrefix = map[BlockType]string{
	BlockSingle:        "B1",
	BlockDoubleRegular: "B2R",
	BlockDoubleSplit:   "B2S",
	BlockTriple:        "B3",
}

// Block is a same-day combination of 1-3 tour instances worked by one driver.
// All derived attributes are computed once at construction and the tour list
// is kept in stable-key order.
type Block struct {
	ID        string         `json:"id"`
	Day       Weekday        `json:"day"`
	Tours     []TourInstance `json:"tours"`
	Type      BlockType      `json:"type"`
	StartMin  int            `json:"start_min"`
	EndMin    int            `json:"end_min"`
	WorkMin   int            `json:"work_min"`
	SpanMin   int            `json:"span_min"`
	MaxGapMin int            `json:"max_gap_min"`
}

// NewBlock assembles a block from instances on one day. The tours are sorted
// by the stable key and the ID embeds a canonical digest of the sorted tour
// IDs, so block identity is stable across processes.
func NewBlock(typ BlockType, day Weekday, tours ...TourInstance) Block {
	sorted := append([]TourInstance(nil), tours...)
	SortInstances(sorted)

	b := Block{
		Day:   day,
		Tours: sorted,
		Type:  typ,
	}
	b.StartMin = sorted[0].StartMin
	b.EndMin = sorted[len(sorted)-1].EffectiveEndMin()
	b.SpanMin = b.EndMin - b.StartMin
	maxGap := 0
	for i, t := range sorted {
		b.WorkMin += t.DurationMin
		if i > 0 {
			if gap := t.StartMin - sorted[i-1].EffectiveEndMin(); gap > maxGap {
				maxGap = gap
			}
		}
	}
	b.MaxGapMin = maxGap
	b.ID = blockIDPrefix[typ] + "-" + b.Digest()
	return b
}

// Digest returns the 16-character SHA-256 prefix over the sorted tour IDs.
// It is the deterministic tie-break key for every block-level decision.
func (b Block) Digest() string {
	ids := make([]string, len(b.Tours))
	for i, t := range b.Tours {
		ids[i] = t.ID
	}
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(b.Day.String() + "|" + strings.Join(ids, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// TourIDs returns the instance IDs covered by the block, in stable-key order.
func (b Block) TourIDs() []string {
	ids := make([]string, len(b.Tours))
	for i, t := range b.Tours {
		ids[i] = t.ID
	}
	return ids
}

// AbsStartMin returns the block start on the absolute week axis.
func (b Block) AbsStartMin() int {
	return int(b.Day-1)*MinutesPerDay + b.StartMin
}

// AbsEndMin returns the block end on the absolute week axis. EndMin already
// carries the +1440 shift when the last tour crosses midnight.
func (b Block) AbsEndMin() int {
	return int(b.Day-1)*MinutesPerDay + b.EndMin
}

// SortBlocks orders blocks by (day, start, end, block ID) — the stable key used
// whenever blocks feed a decision point.
func SortBlocks(blocks []Block) {
	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.StartMin != b.StartMin {
			return a.StartMin < b.StartMin
		}
		if a.EndMin != b.EndMin {
			return a.EndMin < b.EndMin
		}
		return a.ID < b.ID
	})
}
