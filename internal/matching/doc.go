// Package matching grades OMDB candidates against a cleaned query title.
//
// Tiers are discrete and totally ordered (None < Low < Medium < High <
// Exact). A contradicting year always downgrades a tier, even under exact
// title equality, because provider titles collide across remakes and
// sequels. A non-empty candidate list never scores None.
package matching
