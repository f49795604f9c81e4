/*Package interval defines genomic coordinates and the analysis regions that
  indel candidacy is evaluated over.  Positions are zero-based and fit in a
  PosType, which is int32 since that's what BAM files are limited to.
*/
package interval
