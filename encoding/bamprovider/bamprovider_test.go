package bamprovider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/indelsync/interval"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

// writeIndexedBAM writes recs to path and builds path.bai by rereading the
// file.
func writeIndexedBAM(t *testing.T, path string, header *sam.Header, recs []*sam.Record) {
	out, err := os.Create(path)
	assert.NoError(t, err)
	w, err := bam.NewWriter(out, header, 1)
	assert.NoError(t, err)
	for _, r := range recs {
		assert.NoError(t, w.Write(r))
	}
	assert.NoError(t, w.Close())
	assert.NoError(t, out.Close())

	in, err := os.Open(path)
	assert.NoError(t, err)
	defer in.Close() // nolint: errcheck
	br, err := bam.NewReader(in, 1)
	assert.NoError(t, err)
	var idx bam.Index
	for {
		r, err := br.Read()
		if err != nil {
			break
		}
		assert.NoError(t, idx.Add(r, br.LastChunk()))
	}
	assert.NoError(t, br.Close())

	indexOut, err := os.Create(path + ".bai")
	assert.NoError(t, err)
	assert.NoError(t, bam.WriteIndex(indexOut, &idx))
	assert.NoError(t, indexOut.Close())
}

func scanNames(t *testing.T, iter Iterator) []string {
	names := []string{}
	for iter.Scan() {
		names = append(names, iter.Record().Name)
	}
	assert.NoError(t, iter.Close())
	return names
}

func TestBAMProviderRegions(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)

	chr1, err := sam.NewReference("chr1", "", "", 10000, nil, nil)
	assert.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 10000, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	assert.NoError(t, err)
	header.SortOrder = sam.Coordinate

	newRec := func(name string, ref *sam.Reference, pos int) *sam.Record {
		cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 10)}
		qual := []byte{30, 30, 30, 30, 30, 30, 30, 30, 30, 30}
		r, err := sam.NewRecord(name, ref, nil, pos, -1, 0, 60, cigar, []byte("ACGTACGTAC"), qual, nil)
		assert.NoError(t, err)
		return r
	}
	recs := []*sam.Record{
		newRec("r100", chr1, 100),
		newRec("r500", chr1, 500),
		newRec("r1000", chr1, 1000),
		newRec("r2000", chr1, 2000),
		newRec("s50", chr2, 50),
	}
	path := filepath.Join(dir, "test.bam")
	writeIndexedBAM(t, path, header, recs)

	p := NewProvider(path)
	b := p.(*BAMProvider)
	h, err := p.GetHeader()
	assert.NoError(t, err)
	expect.EQ(t, len(h.Refs()), 2)

	// Padding pulls in the read at 500; the read at End is excluded.
	got := scanNames(t, p.NewIterator(interval.Entry{RefName: "chr1", Start0: 600, End: 2000}, 200))
	expect.EQ(t, got, []string{"r500", "r1000"})
	expect.EQ(t, len(b.freeIters), 1)
	expect.EQ(t, b.nActive, 0)

	// The second iterator reuses the pooled one.
	pooled := b.freeIters[0]
	iter := p.NewIterator(interval.Entry{RefName: "chr2", Start0: 0, End: 100}, 0)
	expect.EQ(t, len(b.freeIters), 0)
	expect.EQ(t, b.nActive, 1)
	expect.True(t, iter.(*bamIterator) == pooled)
	expect.EQ(t, scanNames(t, iter), []string{"s50"})
	expect.EQ(t, len(b.freeIters), 1)

	got = scanNames(t, p.NewIterator(interval.Entry{RefName: "chr1", Start0: 0, End: 10000}, 0))
	expect.EQ(t, got, []string{"r100", "r500", "r1000", "r2000"})

	got = scanNames(t, p.NewIterator(interval.Entry{RefName: "chr1", Start0: 5000, End: 6000}, 0))
	expect.EQ(t, got, []string{})

	// A contig the BAM doesn't know is empty, not an error.
	got = scanNames(t, p.NewIterator(interval.Entry{RefName: "chr9", Start0: 0, End: 100}, 0))
	expect.EQ(t, got, []string{})
	expect.EQ(t, len(b.freeIters), 1)

	assert.NoError(t, p.Close())
}
