// Package titles cleans raw provider titles into search-ready movie titles.
//
// Scraped titles carry channel promotion ("| FULL MOVIE"), genre tags, year
// prefixes, actor billing and bilingual duplicates. Normalize applies a fixed
// sequence of rules to strip that noise. Every rule is guarded so a rule that
// would erase the whole title is skipped, which keeps normalization total:
// a non-empty input never produces an empty output.
//
// The package is pure; it performs no I/O and holds no mutable state.
package titles
