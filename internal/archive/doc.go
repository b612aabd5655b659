// Package archive loads comic pages from their container: a directory of
// images, a CBZ (zip), a CBR (rar, through an external extractor) or a PDF
// whose pages are scanned images.
//
// Every Source lists its pages in natural order ("page2" before "page10")
// and decodes them lazily, one page per call, so the pipeline can fan pages
// out to workers. Decode failures are marked services.ErrDecode; the
// pipeline skips such pages rather than aborting the run.
package archive
