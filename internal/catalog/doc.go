// Package catalog holds the in-memory movie catalog and the merge engine that
// mutates it.
//
// A Store maps entry keys to Entries. A key is either canonical (an IMDB id
// such as tt0133093) or temporary (archive-<identifier>, youtube-<videoId>),
// derived from the entry's first source until identity resolution assigns a
// canonical id. Sources form a closed sum type: ArchiveSource and
// YouTubeSource are the only SourceRecord implementations, and every merge
// path switches over them exhaustively.
//
// The Engine never touches disk. Callers load and save through storefile and
// decide when to checkpoint.
package catalog
