// Package snapshot persists and restores engine state: a versioned binary
// container holding the token postings, metadata cache, and interaction log,
// plus a file manager that writes atomically under an advisory lock.
//
// Corruption is never repaired in place. A bad magic, version mismatch,
// truncated payload, or decode failure discards the snapshot and forces a
// full rebuild from the metadata source.
package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/filesift/filesift/internal/index"
	"github.com/filesift/filesift/internal/learn"
)

// Magic is the four-byte prefix of every snapshot file.
const Magic = "FSIF"

// FormatVersion is the current container version. Any other version on disk
// fails closed: the reader refuses it and the engine rebuilds.
const FormatVersion uint32 = 1

// State is the complete serializable engine state.
type State struct {
	// TokenPostings maps each trie token to its sorted posting set.
	TokenPostings map[string][]string
	// Entries is the metadata cache.
	Entries []index.Entry
	// Interactions is the learning store export.
	Interactions []learn.Record
}

// Encode serializes the state into the versioned binary container. The
// output is deterministic: tokens and entries are sorted before writing, so
// identical state always yields identical bytes.
func Encode(s *State) []byte {
	tokens := make([]string, 0, len(s.TokenPostings))
	for tok := range s.TokenPostings {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	entries := make([]index.Entry, len(s.Entries))
	copy(entries, s.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].FileID < entries[j].FileID })

	size := len(Magic) + varint.Uint32.Size(FormatVersion)

	size += varint.Int.Size(len(tokens))
	for _, tok := range tokens {
		ids := s.TokenPostings[tok]
		size += ord.String.Size(tok)
		size += varint.Int.Size(len(ids))
		for _, id := range ids {
			size += ord.String.Size(id)
		}
	}

	size += varint.Int.Size(len(entries))
	for _, e := range entries {
		size += sizeEntry(e)
	}

	size += varint.Int.Size(len(s.Interactions))
	for _, r := range s.Interactions {
		size += sizeRecord(r)
	}

	bs := make([]byte, size)
	n := copy(bs, Magic)
	n += varint.Uint32.Marshal(FormatVersion, bs[n:])

	n += varint.Int.Marshal(len(tokens), bs[n:])
	for _, tok := range tokens {
		ids := s.TokenPostings[tok]
		n += ord.String.Marshal(tok, bs[n:])
		n += varint.Int.Marshal(len(ids), bs[n:])
		for _, id := range ids {
			n += ord.String.Marshal(id, bs[n:])
		}
	}

	n += varint.Int.Marshal(len(entries), bs[n:])
	for _, e := range entries {
		n += marshalEntry(e, bs[n:])
	}

	n += varint.Int.Marshal(len(s.Interactions), bs[n:])
	for _, r := range s.Interactions {
		n += marshalRecord(r, bs[n:])
	}

	return bs
}

// Decode parses a snapshot container. Every failure mode returns an error;
// partial state never escapes.
func Decode(data []byte) (*State, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("bad magic: not a snapshot file")
	}
	n := len(Magic)

	version, vn, err := varint.Uint32.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	n += vn
	if version != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d (want %d)", version, FormatVersion)
	}

	s := &State{TokenPostings: make(map[string][]string)}

	tokenCount, cn, err := varint.Int.Unmarshal(data[n:])
	if err != nil || tokenCount < 0 {
		return nil, fmt.Errorf("read token count: %w", err)
	}
	n += cn
	for i := 0; i < tokenCount; i++ {
		tok, tn, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("read token %d: %w", i, err)
		}
		n += tn

		idCount, icn, err := varint.Int.Unmarshal(data[n:])
		if err != nil || idCount < 0 {
			return nil, fmt.Errorf("read posting count for %q: %w", tok, err)
		}
		n += icn

		ids := make([]string, 0, idCount)
		for j := 0; j < idCount; j++ {
			id, idn, err := ord.String.Unmarshal(data[n:])
			if err != nil {
				return nil, fmt.Errorf("read posting %d of %q: %w", j, tok, err)
			}
			n += idn
			ids = append(ids, id)
		}
		s.TokenPostings[tok] = ids
	}

	entryCount, ecn, err := varint.Int.Unmarshal(data[n:])
	if err != nil || entryCount < 0 {
		return nil, fmt.Errorf("read entry count: %w", err)
	}
	n += ecn
	for i := 0; i < entryCount; i++ {
		e, en, err := unmarshalEntry(data[n:])
		if err != nil {
			return nil, fmt.Errorf("read entry %d: %w", i, err)
		}
		n += en
		s.Entries = append(s.Entries, e)
	}

	recCount, rcn, err := varint.Int.Unmarshal(data[n:])
	if err != nil || recCount < 0 {
		return nil, fmt.Errorf("read interaction count: %w", err)
	}
	n += rcn
	for i := 0; i < recCount; i++ {
		r, rn, err := unmarshalRecord(data[n:])
		if err != nil {
			return nil, fmt.Errorf("read interaction %d: %w", i, err)
		}
		n += rn
		s.Interactions = append(s.Interactions, r)
	}

	if n != len(data) {
		return nil, fmt.Errorf("trailing garbage: %d bytes past end of snapshot", len(data)-n)
	}

	return s, nil
}

func sizeEntry(e index.Entry) int {
	size := ord.String.Size(e.FileID)
	size += ord.String.Size(e.Name)
	size += ord.String.Size(e.Extension)
	size += varint.Int64.Size(e.SizeBytes)
	size += varint.Int64.Size(timeToNanos(e.CreatedAt))
	size += ord.String.Size(string(e.TypeCategory))
	size += varint.Int.Size(len(e.Tags))
	for _, tag := range e.Tags {
		size += ord.String.Size(tag)
	}
	size += ord.String.Size(e.Description)
	return size
}

func marshalEntry(e index.Entry, bs []byte) int {
	n := ord.String.Marshal(e.FileID, bs)
	n += ord.String.Marshal(e.Name, bs[n:])
	n += ord.String.Marshal(e.Extension, bs[n:])
	n += varint.Int64.Marshal(e.SizeBytes, bs[n:])
	n += varint.Int64.Marshal(timeToNanos(e.CreatedAt), bs[n:])
	n += ord.String.Marshal(string(e.TypeCategory), bs[n:])
	n += varint.Int.Marshal(len(e.Tags), bs[n:])
	for _, tag := range e.Tags {
		n += ord.String.Marshal(tag, bs[n:])
	}
	n += ord.String.Marshal(e.Description, bs[n:])
	return n
}

func unmarshalEntry(bs []byte) (index.Entry, int, error) {
	var e index.Entry
	var err error
	n := 0

	read := func(dst *string, what string) error {
		if err != nil {
			return err
		}
		v, vn, rerr := ord.String.Unmarshal(bs[n:])
		if rerr != nil {
			return fmt.Errorf("%s: %w", what, rerr)
		}
		*dst = v
		n += vn
		return nil
	}

	if err = read(&e.FileID, "file id"); err != nil {
		return e, n, err
	}
	if err = read(&e.Name, "name"); err != nil {
		return e, n, err
	}
	if err = read(&e.Extension, "extension"); err != nil {
		return e, n, err
	}

	size, sn, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return e, n, fmt.Errorf("size: %w", err)
	}
	e.SizeBytes = size
	n += sn

	created, cn, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return e, n, fmt.Errorf("created at: %w", err)
	}
	e.CreatedAt = nanosToTime(created)
	n += cn

	var cat string
	if err = read(&cat, "type category"); err != nil {
		return e, n, err
	}
	e.TypeCategory = index.TypeCategory(cat)

	tagCount, tcn, err := varint.Int.Unmarshal(bs[n:])
	if err != nil || tagCount < 0 {
		return e, n, fmt.Errorf("tag count: %w", err)
	}
	n += tcn
	for i := 0; i < tagCount; i++ {
		var tag string
		if err = read(&tag, "tag"); err != nil {
			return e, n, err
		}
		e.Tags = append(e.Tags, tag)
	}

	if err = read(&e.Description, "description"); err != nil {
		return e, n, err
	}

	return e, n, nil
}

func sizeRecord(r learn.Record) int {
	return ord.String.Size(r.FileID) +
		ord.String.Size(string(r.Type)) +
		varint.Int64.Size(timeToNanos(r.OccurredAt))
}

func marshalRecord(r learn.Record, bs []byte) int {
	n := ord.String.Marshal(r.FileID, bs)
	n += ord.String.Marshal(string(r.Type), bs[n:])
	n += varint.Int64.Marshal(timeToNanos(r.OccurredAt), bs[n:])
	return n
}

func unmarshalRecord(bs []byte) (learn.Record, int, error) {
	var r learn.Record
	n := 0

	id, idn, err := ord.String.Unmarshal(bs[n:])
	if err != nil {
		return r, n, fmt.Errorf("file id: %w", err)
	}
	r.FileID = id
	n += idn

	typ, tn, err := ord.String.Unmarshal(bs[n:])
	if err != nil {
		return r, n, fmt.Errorf("type: %w", err)
	}
	r.Type = learn.Type(typ)
	n += tn

	occurred, on, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return r, n, fmt.Errorf("occurred at: %w", err)
	}
	r.OccurredAt = nanosToTime(occurred)
	n += on

	return r, n, nil
}

// timeToNanos encodes a timestamp as Unix nanoseconds, reserving 0 for the
// zero time so it survives a round trip.
func timeToNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func nanosToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v).UTC()
}
