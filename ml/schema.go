package ml

import (
	"fmt"
)

type FieldKind string

const (
	KindNumeric     FieldKind = "numeric"
	KindCategorical FieldKind = "categorical"
)

// SchemaVersion identifies the field layout produced by FeatureTransformer.
const SchemaVersion = "bank-features/v1"

type FieldSpec struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

type Schema struct {
	Version  string      `json:"version"`
	Features []FieldSpec `json:"features"`
}

func (s Schema) Names() []string {
	names := make([]string, len(s.Features))
	for i, f := range s.Features {
		names[i] = f.Name
	}
	return names
}

func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Features {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Compatible checks that other describes exactly the same ordered fields.
func (s Schema) Compatible(other Schema) error {
	if s.Version != other.Version {
		return fmt.Errorf("schema version mismatch: %q != %q", s.Version, other.Version)
	}
	if len(s.Features) != len(other.Features) {
		return fmt.Errorf("schema field count mismatch: %d != %d", len(s.Features), len(other.Features))
	}
	for i := range s.Features {
		if s.Features[i] != other.Features[i] {
			return fmt.Errorf("schema field %d mismatch: %s/%s != %s/%s", i,
				s.Features[i].Name, s.Features[i].Kind, other.Features[i].Name, other.Features[i].Kind)
		}
	}
	return nil
}

func (s Schema) validate() error {
	if s.Version == "" {
		return fmt.Errorf("schema version is empty")
	}
	if len(s.Features) == 0 {
		return fmt.Errorf("schema has no features")
	}
	seen := make(map[string]bool, len(s.Features))
	for _, f := range s.Features {
		if f.Name == "" {
			return fmt.Errorf("schema field without name")
		}
		if f.Kind != KindNumeric && f.Kind != KindCategorical {
			return fmt.Errorf("schema field %s has unknown kind %q", f.Name, f.Kind)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema field %s declared twice", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// FeatureSchema is the schema every FeatureRecord conforms to.
func FeatureSchema() Schema {
	return Schema{
		Version: SchemaVersion,
		Features: []FieldSpec{
			{Name: "age", Kind: KindNumeric},
			{Name: "job", Kind: KindCategorical},
			{Name: "marital", Kind: KindCategorical},
			{Name: "education", Kind: KindCategorical},
			{Name: "default", Kind: KindNumeric},
			{Name: "balance", Kind: KindNumeric},
			{Name: "housing", Kind: KindNumeric},
			{Name: "loan", Kind: KindNumeric},
			{Name: "contact", Kind: KindCategorical},
			{Name: "campaign", Kind: KindNumeric},
			{Name: "pdays", Kind: KindNumeric},
			{Name: "previous", Kind: KindNumeric},
			{Name: "poutcome", Kind: KindCategorical},
			{Name: "is_non_negative_balance", Kind: KindNumeric},
			{Name: "new_client", Kind: KindNumeric},
			{Name: "month_sin", Kind: KindNumeric},
			{Name: "month_cos", Kind: KindNumeric},
			{Name: "day_sin", Kind: KindNumeric},
			{Name: "day_cos", Kind: KindNumeric},
		},
	}
}
