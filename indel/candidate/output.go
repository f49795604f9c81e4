// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package candidate

import (
	"context"
	"io"
	"runtime"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/indelsync/indel"
)

// headerCols are the columns of the output table.  POS is 1-based.
var headerCols = []string{"#CHROM", "POS", "TYPE", "LENGTH", "SWAP_DLENGTH", "INSERT_SEQ", "SAMPLE", "READS", "DEPTH", "DEPTH2", "CANDIDATE"}

// WriteRows writes the header and rows as TSV to w.
func WriteRows(w io.Writer, rows []Row) error {
	tsvw := tsv.NewWriter(w)
	writeHeader(tsvw)
	if err := tsvw.EndLine(); err != nil {
		return err
	}
	for i := range rows {
		if err := writeRow(tsvw, &rows[i]); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}

func writeHeader(tsvw *tsv.Writer) {
	for _, col := range headerCols {
		tsvw.WriteString(col)
	}
}

func writeRow(tsvw *tsv.Writer, r *Row) error {
	tsvw.WriteString(r.RefName)
	tsvw.WriteUint32(uint32(r.Key.Pos + 1)) // 1-based in text
	tsvw.WriteString(r.Key.Type.String())
	tsvw.WriteUint32(uint32(r.Key.Length))
	tsvw.WriteUint32(uint32(r.Key.SwapDLength))
	if r.InsertSeq == "" {
		tsvw.WriteByte('.')
	} else {
		tsvw.WriteString(r.InsertSeq)
	}
	tsvw.WriteString(r.Sample)
	tsvw.WriteUint32(uint32(r.Reads))
	tsvw.WriteUint32(r.Depth)
	tsvw.WriteUint32(r.Depth2)
	if r.Candidate {
		tsvw.WriteByte('1')
	} else {
		tsvw.WriteByte('0')
	}
	return tsvw.EndLine()
}

// writeRows writes the rows of every region, in region order, to path.  A
// ".gz" suffix selects bgzip compression.
func writeRows(ctx context.Context, path string, results []regionResult) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := out.Writer(ctx)
	if strings.HasSuffix(path, ".gz") {
		bgzfw := bgzf.NewWriter(w, runtime.NumCPU())
		defer func() {
			if e := bgzfw.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = bgzfw
	}
	tsvw := tsv.NewWriter(w)
	writeHeader(tsvw)
	if err = tsvw.EndLine(); err != nil {
		return
	}
	for _, res := range results {
		for i := range res.rows {
			if err = writeRow(tsvw, &res.rows[i]); err != nil {
				return
			}
		}
	}
	return tsvw.Flush()
}

// WriteStats writes the evaluation counters to path.
func WriteStats(ctx context.Context, path string, stats indel.Stats) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, out, &err)
	_, err = stats.WriteTo(out.Writer(ctx))
	return
}
