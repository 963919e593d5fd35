package entity

import (
	"bytes"
	"encoding/json"
)

// SectionStatus tags the outcome of one (country, section) fetch.
type SectionStatus string

const (
	SectionOK          SectionStatus = "ok"
	SectionUnavailable SectionStatus = "unavailable"
	SectionError       SectionStatus = "error"
)

const (
	// UnavailableText is written when neither content region exists on the page.
	UnavailableText = "Informations non disponibles"
	// ErrorPrefix precedes the failure description of a section that could not be fetched.
	ErrorPrefix = "Erreur lors du scraping : "
)

// SectionResult is the outcome of fetching one section. It is never absent: failures are
// carried as data and only turned into sentinel strings when rendered.
type SectionResult struct {
	Status SectionStatus
	Text   string
	Detail string
}

func Found(text string) SectionResult {
	return SectionResult{Status: SectionOK, Text: text}
}

func Unavailable() SectionResult {
	return SectionResult{Status: SectionUnavailable}
}

func Failed(err error) SectionResult {
	return SectionResult{Status: SectionError, Detail: err.Error()}
}

// String renders the result the way it appears in the output document.
func (r SectionResult) String() string {
	switch r.Status {
	case SectionOK:
		return r.Text
	case SectionError:
		return ErrorPrefix + r.Detail
	default:
		return UnavailableText
	}
}

func (r SectionResult) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(r.String())
}

// EntityResult holds one SectionResult per section key, in section order.
type EntityResult struct {
	m orderedMap[SectionResult]
}

func (e *EntityResult) Set(section string, r SectionResult) { e.m.set(section, r) }

func (e EntityResult) Get(section string) (SectionResult, bool) { return e.m.get(section) }

// Sections returns the section keys in insertion order.
func (e EntityResult) Sections() []string { return e.m.keyList() }

func (e EntityResult) Len() int { return len(e.m.keys) }

// Failures lists the sections that degraded to an error result.
func (e EntityResult) Failures() []string {
	var out []string
	for _, k := range e.m.keys {
		if e.m.values[k].Status == SectionError {
			out = append(out, k)
		}
	}
	return out
}

func (e EntityResult) MarshalJSON() ([]byte, error) { return e.m.marshal() }

// AggregateResult maps country to EntityResult in completion order. Setting a country twice
// keeps its first position and replaces the value.
type AggregateResult struct {
	m orderedMap[EntityResult]
}

func (a *AggregateResult) Set(entity string, r EntityResult) { a.m.set(entity, r) }

func (a AggregateResult) Get(entity string) (EntityResult, bool) { return a.m.get(entity) }

// Entities returns the countries in completion order.
func (a AggregateResult) Entities() []string { return a.m.keyList() }

func (a AggregateResult) Len() int { return len(a.m.keys) }

func (a AggregateResult) MarshalJSON() ([]byte, error) { return a.m.marshal() }

type orderedMap[V any] struct {
	keys   []string
	values map[string]V
}

func (m *orderedMap[V]) set(k string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

func (m orderedMap[V]) get(k string) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

func (m orderedMap[V]) keyList() []string {
	return append([]string(nil), m.keys...)
}

func (m orderedMap[V]) marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNoEscape(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape is json.Marshal without the <, > and & escaping, so page text survives as-is.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
