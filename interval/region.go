package interval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PosType is the integer type used to represent genomic positions.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// Entry represents a single region on one contig, with 0-based [Start0, End)
// coordinates.
type Entry struct {
	RefName string
	Start0  PosType
	End     PosType
}

// String renders e in 1-based closed samtools style.
func (e Entry) String() string {
	return fmt.Sprintf("%s:%d-%d", e.RefName, e.Start0+1, e.End)
}

// Contains checks whether pos lies in [e.Start0, e.End).
func (e Entry) Contains(pos PosType) bool {
	return pos >= e.Start0 && pos < e.End
}

// Clip returns e with End lowered to refLen when the region runs past the end
// of its contig.
func (e Entry) Clip(refLen PosType) Entry {
	if e.End > refLen {
		e.End = refLen
	}
	return e
}

// Split cuts e into consecutive pieces of at most size positions.  size <= 0
// returns e unchanged.  Each piece owns a disjoint set of positions, so
// pieces can be evaluated independently.
func (e Entry) Split(size PosType) []Entry {
	if size <= 0 || e.End-e.Start0 <= size {
		return []Entry{e}
	}
	var pieces []Entry
	for start := e.Start0; start < e.End; start += size {
		end := start + size
		if end > e.End || end < start {
			end = e.End
		}
		pieces = append(pieces, Entry{RefName: e.RefName, Start0: start, End: end})
	}
	return pieces
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  The interval
// [0, PosTypeMax - 1) is returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.RefName = region
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.RefName = region[0:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start0 = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1 int
	if start1, err = strconv.Atoi(start1Str); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	var end0 int
	if end0, err = strconv.Atoi(endStr); err != nil {
		return
	}
	if end0 < start1 || end0 >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.End = PosType(end0)
	return
}

// ParseRegionStrings parses a list of region strings, as accepted by
// ParseRegionString, separated by semicolons or whitespace.
func ParseRegionStrings(regions string) ([]Entry, error) {
	fields := strings.FieldsFunc(regions, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	entries := make([]Entry, 0, len(fields))
	for _, f := range fields {
		e, err := ParseRegionString(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
