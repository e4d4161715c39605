package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Kind identifies a scrape provider.
type Kind string

const (
	KindArchive Kind = "archive.org"
	KindYouTube Kind = "youtube"
)

// ParseKind accepts the stored kind names plus the short "archive" alias.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "archive", "archive.org":
		return KindArchive, nil
	case "youtube":
		return KindYouTube, nil
	default:
		return "", fmt.Errorf("unknown source kind %q", value)
	}
}

func (k Kind) keyPrefix() string {
	switch k {
	case KindArchive:
		return "archive"
	case KindYouTube:
		return "youtube"
	default:
		return ""
	}
}

// SourceKey is the identity of a source: provider kind plus native id.
type SourceKey struct {
	Kind Kind
	ID   string
}

func (k SourceKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// SourceRecord is one provider's observation of a movie.
type SourceRecord interface {
	Key() SourceKey
	Common() *SourceCommon
	clone() SourceRecord
}

// SourceCommon carries the fields every provider reports.
type SourceCommon struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Year        int       `json:"year,omitempty"`
	Description string    `json:"description,omitempty"`
	Quality     string    `json:"quality,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	AddedAt     time.Time `json:"addedAt,omitzero"`
}

// ArchiveSource is an item from an Archive.org collection.
type ArchiveSource struct {
	SourceCommon
	Collection string `json:"collection,omitempty"`
	Date       string `json:"date,omitempty"`
	Language   string `json:"language,omitempty"`
}

func (s *ArchiveSource) Key() SourceKey        { return SourceKey{Kind: KindArchive, ID: s.ID} }
func (s *ArchiveSource) Common() *SourceCommon { return &s.SourceCommon }

func (s *ArchiveSource) clone() SourceRecord {
	c := *s
	c.Labels = slices.Clone(s.Labels)
	return &c
}

func (s *ArchiveSource) MarshalJSON() ([]byte, error) {
	type plain ArchiveSource
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindArchive, (*plain)(s)})
}

// YouTubeSource is a video from a YouTube channel.
type YouTubeSource struct {
	SourceCommon
	ChannelID       string    `json:"channelId,omitempty"`
	ChannelName     string    `json:"channelName,omitempty"`
	DurationSeconds int       `json:"durationSeconds,omitempty"`
	ViewCount       int64     `json:"viewCount,omitempty"`
	PublishedAt     time.Time `json:"publishedAt,omitzero"`
}

func (s *YouTubeSource) Key() SourceKey        { return SourceKey{Kind: KindYouTube, ID: s.ID} }
func (s *YouTubeSource) Common() *SourceCommon { return &s.SourceCommon }

func (s *YouTubeSource) clone() SourceRecord {
	c := *s
	c.Labels = slices.Clone(s.Labels)
	return &c
}

func (s *YouTubeSource) MarshalJSON() ([]byte, error) {
	type plain YouTubeSource
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindYouTube, (*plain)(s)})
}

// Sources is an ordered source list. It decodes by the "type" discriminator.
type Sources []SourceRecord

func (s *Sources) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Sources, 0, len(raw))
	for i, item := range raw {
		var header struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &header); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
		kind, err := ParseKind(header.Type)
		if err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
		var record SourceRecord
		switch kind {
		case KindArchive:
			record = &ArchiveSource{}
		case KindYouTube:
			record = &YouTubeSource{}
		}
		if err := json.Unmarshal(item, record); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
		out = append(out, record)
	}
	*s = out
	return nil
}

// Index returns the position of the source with key, or -1.
func (s Sources) Index(key SourceKey) int {
	return slices.IndexFunc(s, func(r SourceRecord) bool { return r.Key() == key })
}

func (s Sources) clone() Sources {
	if s == nil {
		return nil
	}
	out := make(Sources, len(s))
	for i, r := range s {
		out[i] = r.clone()
	}
	return out
}

// mergeSources folds incoming into existing. Matching sources merge
// field-wise, new ones append in incoming order.
func mergeSources(existing, incoming Sources) Sources {
	out := existing.clone()
	for _, in := range incoming {
		if in == nil {
			continue
		}
		if i := out.Index(in.Key()); i >= 0 {
			out[i] = mergeSource(out[i], in)
			continue
		}
		out = append(out, in.clone())
	}
	return out
}

// mergeSource applies last-non-empty-wins per field. Both records share a key,
// hence a concrete type.
func mergeSource(existing, incoming SourceRecord) SourceRecord {
	switch cur := existing.(type) {
	case *ArchiveSource:
		in, ok := incoming.(*ArchiveSource)
		if !ok {
			return existing
		}
		merged := *cur
		merged.SourceCommon = mergeCommon(cur.SourceCommon, in.SourceCommon)
		merged.Collection = pick(cur.Collection, in.Collection)
		merged.Date = pick(cur.Date, in.Date)
		merged.Language = pick(cur.Language, in.Language)
		return &merged
	case *YouTubeSource:
		in, ok := incoming.(*YouTubeSource)
		if !ok {
			return existing
		}
		merged := *cur
		merged.SourceCommon = mergeCommon(cur.SourceCommon, in.SourceCommon)
		merged.ChannelID = pick(cur.ChannelID, in.ChannelID)
		merged.ChannelName = pick(cur.ChannelName, in.ChannelName)
		merged.DurationSeconds = pick(cur.DurationSeconds, in.DurationSeconds)
		merged.ViewCount = pick(cur.ViewCount, in.ViewCount)
		merged.PublishedAt = pickTime(cur.PublishedAt, in.PublishedAt)
		return &merged
	default:
		panic(fmt.Sprintf("catalog: unhandled source type %T", existing))
	}
}

func mergeCommon(cur, in SourceCommon) SourceCommon {
	out := cur
	out.Title = pick(cur.Title, in.Title)
	out.Year = pick(cur.Year, in.Year)
	out.Description = pick(cur.Description, in.Description)
	out.Quality = pick(cur.Quality, in.Quality)
	out.Labels = unionStrings(cur.Labels, in.Labels)
	// first capture wins
	if out.AddedAt.IsZero() {
		out.AddedAt = in.AddedAt
	}
	return out
}

func pick[T comparable](cur, in T) T {
	var zero T
	if in != zero {
		return in
	}
	return cur
}

func pickTime(cur, in time.Time) time.Time {
	if !in.IsZero() {
		return in
	}
	return cur
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return slices.Clone(a)
	}
	out := slices.Clone(a)
	for _, v := range b {
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
