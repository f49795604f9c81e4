// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// ErrorModel maps the repeat context of an indel to the per-read probability
// that sequencing error produces a spurious indel there.  Models are fit
// offline from aggregated per-context observation counts.
type ErrorModel interface {
	// IndelErrorProb returns the error probability of a read drawn from the
	// reference allele and of a read drawn from the indel allele.
	IndelErrorProb(info ReportInfo) (refErrorProb, indelErrorProb float64)
}

// ErrorRate is one row of a TableErrorModel.
type ErrorRate struct {
	UnitLength  int     `tsv:"UNIT_LENGTH"`
	RepeatCount int     `tsv:"REPEAT_COUNT"`
	InsertRate  float64 `tsv:"INSERT_RATE"`
	DeleteRate  float64 `tsv:"DELETE_RATE"`
}

// TableErrorModel is an ErrorModel backed by insertion and deletion error rates
// per (repeat unit length, repeat count) context.  Counts above the largest
// tabulated count for a unit length use the largest count's rates, and unit
// lengths absent from the table use the rates of a single unrepeated base.
type TableErrorModel struct {
	// rates[unitLength][repeatCount-1]
	rates map[int][]ErrorRate
	base  ErrorRate
}

// NewTableErrorModel builds a model from rows.  Every unit length must cover
// the repeat counts 1..max without gaps, and unit length 1 must be present.
func NewTableErrorModel(rows []ErrorRate) (*TableErrorModel, error) {
	m := &TableErrorModel{rates: make(map[int][]ErrorRate)}
	sorted := append([]ErrorRate(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].UnitLength != sorted[j].UnitLength {
			return sorted[i].UnitLength < sorted[j].UnitLength
		}
		return sorted[i].RepeatCount < sorted[j].RepeatCount
	})
	for _, r := range sorted {
		if r.UnitLength < 1 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("error model: invalid unit length %d", r.UnitLength))
		}
		if !validRate(r.InsertRate) || !validRate(r.DeleteRate) {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("error model: rates out of [0, 1) in %+v", r))
		}
		cur := m.rates[r.UnitLength]
		if r.RepeatCount != len(cur)+1 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("error model: unit length %d: expected repeat count %d, found %d",
				r.UnitLength, len(cur)+1, r.RepeatCount))
		}
		m.rates[r.UnitLength] = append(cur, r)
	}
	hpol, ok := m.rates[1]
	if !ok {
		return nil, errors.E(errors.Invalid, "error model: no rates for unit length 1")
	}
	m.base = hpol[0]
	return m, nil
}

func validRate(r float64) bool {
	return r >= 0 && r < 1 && !math.IsNaN(r)
}

func (m *TableErrorModel) rate(unitLength, repeatCount int) ErrorRate {
	rates, ok := m.rates[unitLength]
	if !ok || repeatCount < 1 {
		return m.base
	}
	if repeatCount > len(rates) {
		repeatCount = len(rates)
	}
	return rates[repeatCount-1]
}

// IndelErrorProb implements ErrorModel.  The probability for an allele is the
// total insertion and deletion error rate of its repeat context.
func (m *TableErrorModel) IndelErrorProb(info ReportInfo) (refErrorProb, indelErrorProb float64) {
	unitLength := len(info.RepeatUnit)
	ref := m.rate(unitLength, info.RefRepeatCount)
	alt := m.rate(unitLength, info.IndelRepeatCount)
	return ref.InsertRate + ref.DeleteRate, alt.InsertRate + alt.DeleteRate
}

// Rows returns the model's table in (unit length, repeat count) order.
func (m *TableErrorModel) Rows() []ErrorRate {
	var unitLengths []int
	for u := range m.rates {
		unitLengths = append(unitLengths, u)
	}
	sort.Ints(unitLengths)
	var rows []ErrorRate
	for _, u := range unitLengths {
		rows = append(rows, m.rates[u]...)
	}
	return rows
}

// WriteTo writes the model as a TSV table readable by ReadErrorModel.
func (m *TableErrorModel) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tsv.NewWriter(cw)
	tw.WriteString("UNIT_LENGTH")
	tw.WriteString("REPEAT_COUNT")
	tw.WriteString("INSERT_RATE")
	tw.WriteString("DELETE_RATE")
	if err := tw.EndLine(); err != nil {
		return cw.n, err
	}
	for _, r := range m.Rows() {
		tw.WriteUint32(uint32(r.UnitLength))
		tw.WriteUint32(uint32(r.RepeatCount))
		tw.WriteString(strconv.FormatFloat(r.InsertRate, 'g', -1, 64))
		tw.WriteString(strconv.FormatFloat(r.DeleteRate, 'g', -1, 64))
		if err := tw.EndLine(); err != nil {
			return cw.n, err
		}
	}
	err := tw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// ReadErrorModel loads a model from TSV data with the header
// UNIT_LENGTH REPEAT_COUNT INSERT_RATE DELETE_RATE.
func ReadErrorModel(r io.Reader) (*TableErrorModel, error) {
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	tr.ValidateHeader = true
	tr.Comment = '#'
	var rows []ErrorRate
	for {
		var row ErrorRate
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, "error model", err)
		}
		rows = append(rows, row)
	}
	return NewTableErrorModel(rows)
}

// Default error model shape: rates grow log-linearly with the repeat count
// until they reach the table's last count.
const (
	defaultBaseInsertRate = 2.5e-5
	defaultBaseDeleteRate = 5e-5
	defaultHpolGrowth     = 0.33
	defaultHpolMaxCount   = 16
	defaultDinucGrowth    = 0.25
	defaultDinucMaxCount  = 10
)

// DefaultErrorModel returns a built-in model covering homopolymer and
// dinucleotide repeat contexts.
func DefaultErrorModel() *TableErrorModel {
	var rows []ErrorRate
	add := func(unitLength, maxCount int, growth float64) {
		for n := 1; n <= maxCount; n++ {
			scale := math.Exp(growth * float64(n-1))
			rows = append(rows, ErrorRate{
				UnitLength:  unitLength,
				RepeatCount: n,
				InsertRate:  defaultBaseInsertRate * scale,
				DeleteRate:  defaultBaseDeleteRate * scale,
			})
		}
	}
	add(1, defaultHpolMaxCount, defaultHpolGrowth)
	add(2, defaultDinucMaxCount, defaultDinucGrowth)
	m, err := NewTableErrorModel(rows)
	if err != nil {
		panic(err)
	}
	return m
}
