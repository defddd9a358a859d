package thema

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testFeatures(keys ...string) FeatureCollection {
	fc := FeatureCollection{CRS: WGS84}
	for i, key := range keys {
		lon := float64(i) * 2
		fc.Features = append(fc.Features, Feature{
			Geometry: NewPolygon([][][]float64{{
				{lon, 0}, {lon + 1, 0}, {lon + 1, 1}, {lon, 1}, {lon, 0},
			}}),
			Properties: map[string]interface{}{"id": key},
		})
	}
	return fc
}

func TestJoinLeftOuter(t *testing.T) {
	features := testFeatures("A", "B", "C")
	rows := []AttributeRow{
		{"id": "A", "rate": 10.0},
		{"id": "B", "rate": 20.0},
	}

	ds, err := Join(features, rows, "id")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// Every feature appears exactly once, in input order
	if ds.FeatureCount() != 3 {
		t.Fatalf("Expected 3 entries, got %d", ds.FeatureCount())
	}
	for i, want := range []string{"A", "B", "C"} {
		if ds.Entries[i].Key != want {
			t.Errorf("Entry %d: expected key %q, got %q", i, want, ds.Entries[i].Key)
		}
	}

	// Matched entries carry the row values, minus the key column
	if v, ok := ds.Entries[0].Value("rate"); !ok || v != 10.0 {
		t.Errorf("Entry A: expected rate 10, got %v (ok=%v)", v, ok)
	}
	if _, ok := ds.Entries[0].Values["id"]; ok {
		t.Errorf("Entry A: key column should not appear in values")
	}

	// Unmatched feature keeps nil attributes
	if ds.Entries[2].HasData() {
		t.Errorf("Entry C: expected no data")
	}
	if _, ok := ds.Entries[2].Value("rate"); ok {
		t.Errorf("Entry C: expected no rate value")
	}

	if len(ds.Variables) != 1 || ds.Variables[0] != "rate" {
		t.Errorf("Expected variables [rate], got %v", ds.Variables)
	}
	if ds.KeyField != "id" {
		t.Errorf("Expected key field id, got %q", ds.KeyField)
	}
}

func TestJoinDropsUnmatchedRows(t *testing.T) {
	features := testFeatures("A")
	rows := []AttributeRow{
		{"id": "A", "rate": 1.0},
		{"id": "Z", "rate": 2.0},
		{"id": "Y", "rate": 3.0},
	}

	ds, err := Join(features, rows, "id")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if ds.FeatureCount() != 1 {
		t.Errorf("Expected 1 entry, got %d", ds.FeatureCount())
	}
	if v, _ := ds.Entries[0].Value("rate"); v != 1.0 {
		t.Errorf("Expected rate 1, got %v", v)
	}
}

func TestJoinWarnsOnDroppedRows(t *testing.T) {
	features := testFeatures("A", "B")
	rows := []AttributeRow{
		{"id": "A", "rate": 1.0},
		{"id": "Z", "rate": 2.0},
		{"id": "Q", "rate": 3.0},
	}

	core, logs := observer.New(zapcore.WarnLevel)
	_, err := JoinWithOptions(features, rows, "id", JoinOptions{Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["key_field"] != "id" {
		t.Errorf("Expected key_field id, got %v", ctx["key_field"])
	}
	if ctx["dropped"] != int64(2) {
		t.Errorf("Expected 2 dropped rows, got %v", ctx["dropped"])
	}
	// Dropped keys are listed in sorted order.
	if !reflect.DeepEqual(ctx["keys"], []interface{}{"Q", "Z"}) {
		t.Errorf("Expected dropped keys [Q Z], got %v", ctx["keys"])
	}

	// A fully matched join logs nothing.
	_, err = JoinWithOptions(features, rows[:1], "id", JoinOptions{Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("Expected no warning for a fully matched join, got %d entries", logs.Len())
	}
}

func TestJoinDuplicateKey(t *testing.T) {
	features := testFeatures("A", "B")
	rows := []AttributeRow{
		{"id": "A", "rate": 1.0},
		{"id": "B", "rate": 2.0},
		{"id": "A", "rate": 3.0},
	}

	_, err := Join(features, rows, "id")
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateKeyError, got %v", err)
	}
	if dup.Key != "A" {
		t.Errorf("Expected duplicate key A, got %q", dup.Key)
	}
	if dup.Count != 2 {
		t.Errorf("Expected count 2, got %d", dup.Count)
	}
}

func TestJoinSchemaErrors(t *testing.T) {
	features := testFeatures("A")
	rows := []AttributeRow{{"id": "A", "rate": 1.0}}

	// Empty key field
	_, err := Join(features, rows, "")
	var schema *SchemaError
	if !errors.As(err, &schema) {
		t.Fatalf("Expected SchemaError for empty key field, got %v", err)
	}

	// Key field missing from a row
	_, err = Join(features, []AttributeRow{{"rate": 1.0}}, "id")
	if !errors.As(err, &schema) {
		t.Fatalf("Expected SchemaError for row without key, got %v", err)
	}
	if schema.Side != "attributes" {
		t.Errorf("Expected side attributes, got %q", schema.Side)
	}

	// Key field missing from a feature
	badFeatures := testFeatures("A")
	badFeatures.Features[0].Properties = map[string]interface{}{"name": "alpha"}
	_, err = Join(badFeatures, rows, "id")
	if !errors.As(err, &schema) {
		t.Fatalf("Expected SchemaError for feature without key, got %v", err)
	}
	if schema.Side != "features" {
		t.Errorf("Expected side features, got %q", schema.Side)
	}
}

func TestJoinNumericKeys(t *testing.T) {
	// GeoJSON numbers decode as float64; CSV keys stay strings. Integral
	// keys must still match across the two.
	features := testFeatures("x")
	features.Features[0].Properties["id"] = float64(42)
	rows := []AttributeRow{{"id": "42", "rate": 7.0}}

	ds, err := Join(features, rows, "id")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if !ds.Entries[0].HasData() {
		t.Fatalf("Expected numeric key 42 to match string key \"42\"")
	}
	if v, _ := ds.Entries[0].Value("rate"); v != 7.0 {
		t.Errorf("Expected rate 7, got %v", v)
	}
}

func TestJoinDoesNotMutateInputs(t *testing.T) {
	features := testFeatures("A")
	rows := []AttributeRow{{"id": "A", "rate": 1.0}}

	ds, err := Join(features, rows, "id")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	ds.Entries[0].Values["rate"] = 99.0
	if rows[0]["rate"] != 1.0 {
		t.Errorf("Join aliased the input row: rate became %v", rows[0]["rate"])
	}
}
