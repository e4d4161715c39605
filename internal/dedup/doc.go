// Package dedup finds catalog entries that describe the same film and folds
// them into one representative.
//
// Grouping is the union of two passes. The first groups entries sharing an
// IMDB id, whether as their key or through attached metadata. The second
// clusters the remaining entries by normalized title similarity. Clustering
// is greedy: keys are visited in sorted order, each unassigned key seeds a
// group, and later keys join the first seed they are similar enough to. A key
// is never re-evaluated once placed, so boundaries depend on key order and a
// chain A~B~C with A and C dissimilar splits rather than merging
// transitively.
//
// Folding is a one-way ratchet. Re-running with a looser threshold merges
// groups a stricter run left apart, and nothing splits them again.
package dedup
