package docstore

import (
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Encode converts a document to a bson.M, setting _id when id is not empty.
func Encode(doc any, id string) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	if id != "" {
		m["_id"] = id
	}
	return m, nil
}

// Decode converts raw BSON bytes into out.
func Decode(raw []byte, out any) error {
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	return nil
}

// DecodeAll decodes each raw document into a new element appended to
// the slice out points to.
func DecodeAll(raws [][]byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("docstore: query target must be a pointer to a slice, got %T", out)
	}
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(raws))
	for _, raw := range raws {
		elem := reflect.New(elemType)
		if err := Decode(raw, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}

// Merge applies fields to the encoded document m. Dotted keys create or
// descend into nested documents.
func Merge(m bson.M, fields Fields) error {
	for key, val := range fields {
		if key == "_id" {
			return fmt.Errorf("docstore: cannot update _id")
		}
		norm, err := normalize(val)
		if err != nil {
			return err
		}
		parts := strings.Split(key, ".")
		cur := m
		for _, p := range parts[:len(parts)-1] {
			next, ok := asMap(cur[p])
			if !ok {
				next = bson.M{}
			}
			cur[p] = next
			cur = next
		}
		cur[parts[len(parts)-1]] = norm
	}
	return nil
}

// Matches reports whether every filter key equals the document's value.
func Matches(m bson.M, filter Filter) (bool, error) {
	for key, want := range filter {
		got, ok := lookup(m, key)
		if !ok {
			return false, nil
		}
		norm, err := normalize(want)
		if err != nil {
			return false, err
		}
		if !reflect.DeepEqual(got, norm) {
			return false, nil
		}
	}
	return true, nil
}

func lookup(m bson.M, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := asMap(cur[p])
		if !ok {
			return nil, false
		}
		cur = next
	}
	v, ok := cur[parts[len(parts)-1]]
	return v, ok
}

// normalize round-trips a value through BSON so it compares equal to
// values decoded from stored documents.
func normalize(v any) (any, error) {
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return nil, fmt.Errorf("docstore: encode value: %w", err)
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("docstore: encode value: %w", err)
	}
	return out["v"], nil
}

func asMap(v any) (bson.M, bool) {
	switch t := v.(type) {
	case bson.M:
		return t, true
	case map[string]any:
		return bson.M(t), true
	case primitive.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return m, true
	default:
		return nil, false
	}
}
