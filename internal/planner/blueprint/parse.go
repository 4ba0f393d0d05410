// Package blueprint parses blueprint records and derives the immutable
// recipe tables the search runs against.
package blueprint

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rsned/geode-planner/pkg/planner"
)

// ErrMalformedBlueprint is wrapped by every ParseError.
var ErrMalformedBlueprint = errors.New("malformed blueprint")

// ParseError reports blueprint text that does not match the record format.
type ParseError struct {
	Record  int    // 1-based index of the record being parsed
	Offset  int    // byte offset into the whitespace-normalized input
	Snippet string // text at the offset, truncated
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing blueprint record %d at offset %d near %q: %v",
		e.Record, e.Offset, e.Snippet, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// recordPattern matches one record with its seven fields in fixed order.
var recordPattern = regexp.MustCompile(`^Blueprint (\d+): ` +
	`Each ore robot costs (\d+) ore\. ` +
	`Each clay robot costs (\d+) ore\. ` +
	`Each obsidian robot costs (\d+) ore and (\d+) clay\. ` +
	`Each geode robot costs (\d+) ore and (\d+) obsidian\.`)

const snippetLen = 40

// Parse reads every blueprint record in text. Records may be separated by
// or split across any amount of whitespace. Empty input yields no
// blueprints.
func Parse(text string) ([]planner.Blueprint, error) {
	normalized := strings.Join(strings.Fields(text), " ")

	var blueprints []planner.Blueprint
	offset := 0
	for offset < len(normalized) {
		record := len(blueprints) + 1
		rest := normalized[offset:]

		m := recordPattern.FindStringSubmatch(rest)
		if m == nil {
			return nil, newParseError(record, offset, rest, ErrMalformedBlueprint)
		}

		bp, err := fromFields(m[1:])
		if err != nil {
			return nil, newParseError(record, offset, rest, err)
		}
		blueprints = append(blueprints, bp)

		offset += len(m[0])
		if offset < len(normalized) && normalized[offset] == ' ' {
			offset++
		}
	}

	return blueprints, nil
}

// ParseLine parses exactly one blueprint record.
func ParseLine(line string) (planner.Blueprint, error) {
	bps, err := Parse(line)
	if err != nil {
		return planner.Blueprint{}, err
	}
	if len(bps) != 1 {
		return planner.Blueprint{}, &ParseError{
			Record:  1,
			Snippet: truncate(line),
			Err:     fmt.Errorf("%w: expected one record, found %d", ErrMalformedBlueprint, len(bps)),
		}
	}
	return bps[0], nil
}

// Format renders bp in the record format Parse accepts.
func Format(bp planner.Blueprint) string {
	c := bp.Costs
	return fmt.Sprintf("Blueprint %d: "+
		"Each ore robot costs %d ore. "+
		"Each clay robot costs %d ore. "+
		"Each obsidian robot costs %d ore and %d clay. "+
		"Each geode robot costs %d ore and %d obsidian.",
		bp.ID,
		c[planner.Ore][planner.Ore],
		c[planner.Clay][planner.Ore],
		c[planner.Obsidian][planner.Ore], c[planner.Obsidian][planner.Clay],
		c[planner.Geode][planner.Ore], c[planner.Geode][planner.Obsidian],
	)
}

// fromFields builds a blueprint from the seven captured numbers. Every
// number must fit in 32 unsigned bits.
func fromFields(fields []string) (planner.Blueprint, error) {
	nums := make([]int64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return planner.Blueprint{}, fmt.Errorf("%w: field %d: %v", ErrMalformedBlueprint, i+1, err)
		}
		nums[i] = int64(n)
	}
	if nums[0] > int64(^uint32(0)>>1) {
		return planner.Blueprint{}, fmt.Errorf("%w: id %d out of range", ErrMalformedBlueprint, nums[0])
	}

	var bp planner.Blueprint
	bp.ID = int(nums[0])
	bp.Costs[planner.Ore][planner.Ore] = nums[1]
	bp.Costs[planner.Clay][planner.Ore] = nums[2]
	bp.Costs[planner.Obsidian][planner.Ore] = nums[3]
	bp.Costs[planner.Obsidian][planner.Clay] = nums[4]
	bp.Costs[planner.Geode][planner.Ore] = nums[5]
	bp.Costs[planner.Geode][planner.Obsidian] = nums[6]
	return bp, nil
}

func newParseError(record, offset int, rest string, err error) *ParseError {
	return &ParseError{
		Record:  record,
		Offset:  offset,
		Snippet: truncate(rest),
		Err:     err,
	}
}

func truncate(s string) string {
	if len(s) > snippetLen {
		return s[:snippetLen] + "..."
	}
	return s
}
