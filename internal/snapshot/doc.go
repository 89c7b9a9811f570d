// Package snapshot computes and stores the per-page security snapshot.
//
// A PageSnapshot records the protocol a page was served over, an approximate
// cookie count, the number of script elements and how many of those load from
// a host other than the page's own. Snapshots are keyed by hostname in the
// shared store (see Key) and every write replaces the previous snapshot for
// that hostname.
//
// The cookie count splits the document cookie string on ';'. Cookie values
// that themselves contain ';' are over-counted. This is a known approximation
// and is kept as-is.
package snapshot
