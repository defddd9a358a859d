package thema

import (
	"sort"

	"go.uber.org/zap"
)

// Join merges attribute rows onto a feature collection by the shared key
// field, producing a thematic dataset with left outer join semantics:
// every feature appears exactly once in the result, features without a
// matching row keep nil attributes, and rows matching no feature are
// dropped.
//
// Join fails with SchemaError when keyField is absent from any feature's
// properties or any attribute row, and with DuplicateKeyError when two
// rows share a key (the join would be ambiguous).
//
// Join is a pure transformation: neither input is mutated, and the same
// inputs always produce the same dataset.
func Join(features FeatureCollection, rows []AttributeRow, keyField string) (ThematicDataset, error) {
	return JoinWithOptions(features, rows, keyField, DefaultJoinOptions())
}

// JoinWithOptions is Join with explicit options. A logger, when supplied,
// receives one warning listing how many attribute rows were dropped for
// matching no feature.
func JoinWithOptions(features FeatureCollection, rows []AttributeRow, keyField string, opts JoinOptions) (ThematicDataset, error) {
	if keyField == "" {
		return ThematicDataset{}, &SchemaError{Side: "join", Cause: "key field must not be empty"}
	}

	// Index rows by key, rejecting duplicates.
	byKey := make(map[string]AttributeRow, len(rows))
	variables := make(map[string]bool)
	for _, row := range rows {
		kv, ok := row[keyField]
		if !ok {
			return ThematicDataset{}, &SchemaError{Side: "attributes", Field: keyField}
		}
		key := keyString(kv)
		if _, dup := byKey[key]; dup {
			count := 0
			for _, r := range rows {
				if v, ok := r[keyField]; ok && keyString(v) == key {
					count++
				}
			}
			return ThematicDataset{}, &DuplicateKeyError{Key: key, Count: count}
		}
		byKey[key] = row
		for name := range row {
			if name != keyField {
				variables[name] = true
			}
		}
	}

	entries := make([]ThematicEntry, 0, len(features.Features))
	matched := make(map[string]bool, len(byKey))
	for _, f := range features.Features {
		kv, ok := f.Properties[keyField]
		if !ok {
			return ThematicDataset{}, &SchemaError{Side: "features", Field: keyField}
		}
		key := keyString(kv)
		entry := ThematicEntry{Feature: f, Key: key}
		if row, ok := byKey[key]; ok {
			values := make(map[string]interface{}, len(row)-1)
			for name, v := range row {
				if name != keyField {
					values[name] = v
				}
			}
			entry.Values = values
			matched[key] = true
		}
		entries = append(entries, entry)
	}

	// Rows that matched no feature are dropped, with a warning.
	if len(matched) < len(byKey) && opts.Logger != nil {
		dropped := make([]string, 0, len(byKey)-len(matched))
		for key := range byKey {
			if !matched[key] {
				dropped = append(dropped, key)
			}
		}
		sort.Strings(dropped)
		opts.Logger.Warn("attribute rows matched no feature",
			zap.String("key_field", keyField),
			zap.Int("dropped", len(dropped)),
			zap.Strings("keys", dropped))
	}

	schema := make([]string, 0, len(variables))
	for name := range variables {
		schema = append(schema, name)
	}
	sort.Strings(schema)

	return ThematicDataset{
		CRS:       features.CRS,
		KeyField:  keyField,
		Variables: schema,
		Entries:   entries,
	}, nil
}
