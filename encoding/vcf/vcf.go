// Package vcf reads the indel records of a VCF file.  It is used to load
// known variants that must be treated as candidates regardless of read
// support.  Only the CHROM, POS, REF and ALT columns are interpreted.
package vcf

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/indelsync/interval"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// IndelType classifies a normalized VCF indel.
type IndelType uint8

const (
	// Insertion adds InsertSeq after the anchor base.
	Insertion IndelType = iota
	// Deletion removes Length bases following the anchor base.
	Deletion
	// Complex replaces SwapDLength reference bases with InsertSeq.
	Complex
)

// Indel is one ALT allele of a VCF record, normalized so that Pos is the
// 0-based position of the first base following the shared anchor base.
type Indel struct {
	RefName     string
	Pos         interval.PosType
	Type        IndelType
	Length      int // inserted length, or deleted length for Deletion
	SwapDLength int // deleted length for Complex
	InsertSeq   string
}

// ReadIndels scans VCF text from r and returns the indels overlapping region,
// in file order.  An empty region.RefName accepts every record.
func ReadIndels(r io.Reader, region interval.Entry) ([]Indel, error) {
	tr := tsv.NewReader(r)
	tr.Comment = '#'
	tr.FieldsPerRecord = -1
	tr.LazyQuotes = true
	var indels []Indel
	for nRec := 1; ; nRec++ {
		cols, err := tr.Reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "couldn't read VCF data")
		}
		if len(cols) < 5 {
			return nil, errors.Errorf("vcf record %d: expected at least 5 columns, found %d", nRec, len(cols))
		}
		if region.RefName != "" && cols[0] != region.RefName {
			continue
		}
		pos1, err := strconv.ParseInt(cols[1], 10, 32)
		if err != nil || pos1 <= 0 {
			return nil, errors.Errorf("vcf record %d: invalid POS %q", nRec, cols[1])
		}
		ref := strings.ToUpper(cols[3])
		for _, alt := range strings.Split(cols[4], ",") {
			indel, ok := normalize(cols[0], interval.PosType(pos1), ref, strings.ToUpper(alt))
			if !ok {
				continue
			}
			if region.RefName != "" && !region.Contains(indel.Pos) {
				continue
			}
			indels = append(indels, indel)
		}
	}
	return indels, nil
}

// normalize converts one REF/ALT pair into an Indel.  pos1 is the 1-based VCF
// POS of the first REF base.  The common suffix is trimmed first, then the
// common prefix, each while both alleles keep at least one base.  A remaining
// shared first base is the anchor, and Pos is the 0-based position just after
// it.
func normalize(refName string, pos1 interval.PosType, ref, alt string) (Indel, bool) {
	if len(ref) == 0 || len(alt) == 0 || strings.ContainsAny(ref+alt, "<>[]*.") {
		return Indel{}, false
	}
	for len(ref) > 1 && len(alt) > 1 && ref[len(ref)-1] == alt[len(alt)-1] {
		ref, alt = ref[:len(ref)-1], alt[:len(alt)-1]
	}
	pos := pos1 - 1
	for len(ref) > 1 && len(alt) > 1 && ref[0] == alt[0] {
		ref, alt = ref[1:], alt[1:]
		pos++
	}
	if ref[0] == alt[0] {
		ref, alt = ref[1:], alt[1:]
		pos++
	}
	if len(ref) == len(alt) {
		// SNV or MNV.
		return Indel{}, false
	}
	indel := Indel{RefName: refName, Pos: pos}
	switch {
	case len(ref) == 0:
		indel.Type = Insertion
		indel.Length = len(alt)
		indel.InsertSeq = alt
	case len(alt) == 0:
		indel.Type = Deletion
		indel.Length = len(ref)
	default:
		indel.Type = Complex
		indel.Length = len(alt)
		indel.SwapDLength = len(ref)
		indel.InsertSeq = alt
	}
	return indel, true
}

// Open reads the indels of the VCF file at path that overlap region.  gzip and
// bgzip inputs are decompressed.
func Open(ctx context.Context, path string, region interval.Entry) (indels []Indel, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return nil, errors.Wrapf(err, "gunzip %s", path)
		}
		defer func() {
			if e := gz.Close(); e != nil && err == nil {
				err = e
			}
		}()
		reader = gz
	}
	if indels, err = ReadIndels(reader, region); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return indels, nil
}
