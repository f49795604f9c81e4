package vcf

import (
	"strings"
	"testing"

	"github.com/grailbio/indelsync/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vcfData = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
chr1	10	.	A	ATT	.	PASS	.
chr1	20	rs1	CAG	C	.	PASS	.
chr1	30	.	G	T	.	PASS	.
chr1	40	.	GAA	GC,G,<DEL>	.	PASS	.
chr2	5	.	T	TA	.	PASS	.
`

func TestReadIndels(t *testing.T) {
	indels, err := ReadIndels(strings.NewReader(vcfData), interval.Entry{})
	require.NoError(t, err)
	assert.Equal(t, []Indel{
		{RefName: "chr1", Pos: 10, Type: Insertion, Length: 2, InsertSeq: "TT"},
		{RefName: "chr1", Pos: 20, Type: Deletion, Length: 2},
		{RefName: "chr1", Pos: 40, Type: Complex, Length: 1, SwapDLength: 2, InsertSeq: "C"},
		{RefName: "chr1", Pos: 40, Type: Deletion, Length: 2},
		{RefName: "chr2", Pos: 5, Type: Insertion, Length: 1, InsertSeq: "A"},
	}, indels)
}

func TestReadIndelsRegion(t *testing.T) {
	indels, err := ReadIndels(strings.NewReader(vcfData), interval.Entry{RefName: "chr1", Start0: 15, End: 35})
	require.NoError(t, err)
	require.Equal(t, 1, len(indels))
	assert.Equal(t, interval.PosType(20), indels[0].Pos)
}

func TestReadIndelsTrimsAlleles(t *testing.T) {
	data := "chr1\t10\t.\tACC\tA,ACCC\t.\t.\t.\n" +
		"chr1\t50\t.\tCTTG\tCTG\t.\t.\t.\n" +
		"chr1\t60\t.\tAGT\tAGCT\t.\t.\t.\n" +
		"chr1\t70\t.\tACGT\tATGT\t.\t.\t.\n" +
		"chr1\t80\t.\tAC\tTGG\t.\t.\t.\n"
	indels, err := ReadIndels(strings.NewReader(data), interval.Entry{})
	require.NoError(t, err)
	assert.Equal(t, []Indel{
		{RefName: "chr1", Pos: 10, Type: Deletion, Length: 2},
		{RefName: "chr1", Pos: 10, Type: Insertion, Length: 1, InsertSeq: "C"},
		{RefName: "chr1", Pos: 50, Type: Deletion, Length: 1},
		{RefName: "chr1", Pos: 61, Type: Insertion, Length: 1, InsertSeq: "C"},
		{RefName: "chr1", Pos: 79, Type: Complex, Length: 3, SwapDLength: 2, InsertSeq: "TGG"},
	}, indels)
}

func TestReadIndelsMalformed(t *testing.T) {
	_, err := ReadIndels(strings.NewReader("chr1\tx\t.\tA\tAT\n"), interval.Entry{})
	assert.Error(t, err)
	_, err = ReadIndels(strings.NewReader("chr1\t5\n"), interval.Entry{})
	assert.Error(t, err)
}
