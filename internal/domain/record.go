package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
)

var derivedKeys = map[string]struct{}{
	KeyNumericPrice:       {},
	KeyNumericDailyPrice:  {},
	KeyNumericReviewScore: {},
	KeyNumericReviewCount: {},
	KeyNumericDistance:    {},
	KeyValueRatio:         {},
}

/********** decoding **********/

// DecodeRawHotels reads a JSON array of hotel objects.
// Anything that is not an array of objects, or a known key with the wrong type, fails with ErrInput.
func DecodeRawHotels(r io.Reader) ([]RawHotel, error) {
	items, err := decodeArray(r)
	if err != nil {
		return nil, err
	}
	out := make([]RawHotel, 0, len(items))
	for i, it := range items {
		var h RawHotel
		if err := h.UnmarshalJSON(it); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// DecodeNormalizedHotels reads records previously written by NormalizedHotel.MarshalJSON.
func DecodeNormalizedHotels(r io.Reader) ([]NormalizedHotel, error) {
	items, err := decodeArray(r)
	if err != nil {
		return nil, err
	}
	out := make([]NormalizedHotel, 0, len(items))
	for i, it := range items {
		var h NormalizedHotel
		if err := h.UnmarshalJSON(it); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func decodeArray(r io.Reader) ([]json.RawMessage, error) {
	var items []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of records: %v", ErrInput, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: expected a JSON array of records, got null", ErrInput)
	}
	// the array must be the whole document
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the records array", ErrInput)
	}
	return items, nil
}

func decodeObject(b []byte) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: record is not an object", ErrInput)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: record is null", ErrInput)
	}
	return m, nil
}

// UnmarshalJSON decodes one record. Derived numeric keys are dropped so they get recomputed.
func (h *RawHotel) UnmarshalJSON(b []byte) error {
	m, err := decodeObject(b)
	if err != nil {
		return err
	}
	out, err := rawFromMap(m)
	if err != nil {
		return err
	}
	*h = out
	return nil
}

func rawFromMap(m map[string]json.RawMessage) (RawHotel, error) {
	var h RawHotel
	var err error
	str := func(key string) *string {
		if err != nil {
			return nil
		}
		var s *string
		s, err = optString(key, m[key])
		return s
	}

	if id := str(KeyID); id != nil {
		h.ID = *id
	}
	h.Name = str(KeyName)
	h.ImageURL = str(KeyImageURL)
	h.Location = str(KeyLocation)
	h.DistanceToCenter = str(KeyDistanceToCenter)
	h.ReviewScore = str(KeyReviewScore)
	h.ReviewText = str(KeyReviewText)
	h.ReviewCount = str(KeyReviewCount)
	h.Price = str(KeyPrice)
	h.DailyPrice = str(KeyDailyPrice)
	h.Nights = str(KeyNights)
	if err != nil {
		return RawHotel{}, err
	}
	if h.StarRating, err = optInt(KeyStarRating, m[KeyStarRating]); err != nil {
		return RawHotel{}, err
	}
	if h.Features, err = optStrings(KeyFeatures, m[KeyFeatures]); err != nil {
		return RawHotel{}, err
	}

	for k, v := range m {
		if isKnownKey(k) {
			continue
		}
		if _, ok := derivedKeys[k]; ok {
			continue
		}
		if h.Extra == nil {
			h.Extra = make(map[string]json.RawMessage)
		}
		h.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return h, nil
}

// UnmarshalJSON decodes a record including its derived numeric keys.
func (h *NormalizedHotel) UnmarshalJSON(b []byte) error {
	m, err := decodeObject(b)
	if err != nil {
		return err
	}
	raw, err := rawFromMap(m)
	if err != nil {
		return err
	}
	out := NormalizedHotel{RawHotel: raw}
	for _, f := range []struct {
		key string
		dst **float64
	}{
		{KeyNumericPrice, &out.NumericPrice},
		{KeyNumericDailyPrice, &out.NumericDailyPrice},
		{KeyNumericReviewScore, &out.NumericReviewScore},
		{KeyNumericReviewCount, &out.NumericReviewCount},
		{KeyNumericDistance, &out.NumericDistance},
		{KeyValueRatio, &out.ValueRatio},
	} {
		v, err := optFloat(f.key, m[f.key])
		if err != nil {
			return err
		}
		*f.dst = v
	}
	*h = out
	return nil
}

func isKnownKey(k string) bool {
	switch k {
	case KeyID, KeyName, KeyImageURL, KeyStarRating, KeyLocation, KeyDistanceToCenter,
		KeyFeatures, KeyReviewScore, KeyReviewText, KeyReviewCount, KeyPrice, KeyDailyPrice, KeyNights:
		return true
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// optString accepts a string, null, or a JSON number (kept as its literal text).
func optString(key string, raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	t := bytes.TrimSpace(raw)
	switch c := t[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return nil, fieldErr(key, "string")
		}
		return &s, nil
	case c == '-' || (c >= '0' && c <= '9'):
		s := string(t)
		return &s, nil
	}
	return nil, fieldErr(key, "string")
}

func optInt(key string, raw json.RawMessage) (*int, error) {
	if isNull(raw) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f != math.Trunc(f) {
		return nil, fieldErr(key, "integer")
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return nil, fieldErr(key, "integer in range")
	}
	n := int(f)
	return &n, nil
}

func optFloat(key string, raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fieldErr(key, "number")
	}
	return &f, nil
}

func optStrings(key string, raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fieldErr(key, "list of strings")
	}
	return out, nil
}

func fieldErr(key, want string) error {
	return fmt.Errorf("%w: field %q must be %s or null", ErrInput, key, want)
}

/********** encoding **********/

type field struct {
	key string
	val any
}

func (h RawHotel) fields() []field {
	features := h.Features
	if features == nil {
		features = []string{}
	}
	return []field{
		{KeyID, h.ID},
		{KeyName, h.Name},
		{KeyImageURL, h.ImageURL},
		{KeyStarRating, h.StarRating},
		{KeyLocation, h.Location},
		{KeyDistanceToCenter, h.DistanceToCenter},
		{KeyFeatures, features},
		{KeyReviewScore, h.ReviewScore},
		{KeyReviewText, h.ReviewText},
		{KeyReviewCount, h.ReviewCount},
		{KeyPrice, h.Price},
		{KeyDailyPrice, h.DailyPrice},
		{KeyNights, h.Nights},
	}
}

// MarshalJSON writes known keys in scrape order followed by extra keys sorted by name.
func (h RawHotel) MarshalJSON() ([]byte, error) {
	return writeObject(h.fields(), h.Extra)
}

// MarshalJSON writes the raw keys, then the derived keys that are present, then extras.
func (h NormalizedHotel) MarshalJSON() ([]byte, error) {
	fs := h.RawHotel.fields()
	for _, d := range []struct {
		key string
		v   *float64
	}{
		{KeyNumericPrice, h.NumericPrice},
		{KeyNumericDailyPrice, h.NumericDailyPrice},
		{KeyNumericReviewScore, h.NumericReviewScore},
		{KeyNumericReviewCount, h.NumericReviewCount},
		{KeyNumericDistance, h.NumericDistance},
		{KeyValueRatio, h.ValueRatio},
	} {
		if d.v != nil {
			fs = append(fs, field{d.key, *d.v})
		}
	}
	return writeObject(fs, h.Extra)
}

// Flatten returns the record as a generic map, the shape CSV and spreadsheet writers work from.
func (h RawHotel) Flatten() (map[string]any, error) {
	return flatten(h.MarshalJSON())
}

func (h NormalizedHotel) Flatten() (map[string]any, error) {
	return flatten(h.MarshalJSON())
}

func flatten(b []byte, err error) (map[string]any, error) {
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// marshalValue is json.Marshal without HTML escaping, so names like "Otel & Spa" stay readable.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeObject(fs []field, extra map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	put := func(k string, v []byte) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := marshalValue(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(v)
	}
	for _, f := range fs {
		vb, err := marshalValue(f.val)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", f.key, err)
		}
		put(f.key, vb)
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := extra[k]
		if len(bytes.TrimSpace(v)) == 0 {
			v = json.RawMessage("null")
		}
		put(k, v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
