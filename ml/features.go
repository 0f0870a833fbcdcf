package ml

import (
	"math"
	"sync"
)

const (
	monthPeriod = 12
	// Every month uses the same period regardless of its actual length.
	dayPeriod = 31
)

var yesNoCodes = map[string]int{"no": 0, "yes": 1}

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

type FeatureRecord struct {
	Age       int
	Job       string
	Marital   string
	Education string
	Default   int
	Balance   int
	Housing   int
	Loan      int
	Contact   string
	Campaign  int
	Pdays     int
	Previous  int
	Poutcome  string

	IsNonNegativeBalance int
	NewClient            int

	MonthSin float64
	MonthCos float64
	DaySin   float64
	DayCos   float64
}

// Feature is one named value of a FeatureRecord. Number is set for numeric
// fields, Category for categorical ones.
type Feature struct {
	Name     string
	Kind     FieldKind
	Number   float64
	Category string
}

func (f Feature) Value() interface{} {
	if f.Kind == KindCategorical {
		return f.Category
	}
	return f.Number
}

func numeric(name string, value float64) Feature {
	return Feature{Name: name, Kind: KindNumeric, Number: value}
}

func categorical(name, value string) Feature {
	return Feature{Name: name, Kind: KindCategorical, Category: value}
}

// Fields returns the record's values in FeatureSchema order.
func (f FeatureRecord) Fields() []Feature {
	return []Feature{
		numeric("age", float64(f.Age)),
		categorical("job", f.Job),
		categorical("marital", f.Marital),
		categorical("education", f.Education),
		numeric("default", float64(f.Default)),
		numeric("balance", float64(f.Balance)),
		numeric("housing", float64(f.Housing)),
		numeric("loan", float64(f.Loan)),
		categorical("contact", f.Contact),
		numeric("campaign", float64(f.Campaign)),
		numeric("pdays", float64(f.Pdays)),
		numeric("previous", float64(f.Previous)),
		categorical("poutcome", f.Poutcome),
		numeric("is_non_negative_balance", float64(f.IsNonNegativeBalance)),
		numeric("new_client", float64(f.NewClient)),
		numeric("month_sin", f.MonthSin),
		numeric("month_cos", f.MonthCos),
		numeric("day_sin", f.DaySin),
		numeric("day_cos", f.DayCos),
	}
}

func (f FeatureRecord) Names() []string {
	fields := f.Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name
	}
	return names
}

func (f FeatureRecord) Lookup(name string) (Feature, bool) {
	for _, field := range f.Fields() {
		if field.Name == name {
			return field, true
		}
	}
	return Feature{}, false
}

func (f FeatureRecord) Map() map[string]interface{} {
	fields := f.Fields()
	out := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		out[field.Name] = field.Value()
	}
	return out
}

// FeatureTransformer derives FeatureRecords from RawRecords. It has no learned
// parameters; Fit only records the output field names for introspection.
type FeatureTransformer struct {
	mu              sync.RWMutex
	featureNamesOut []string
}

func NewFeatureTransformer() *FeatureTransformer {
	return &FeatureTransformer{}
}

func (t *FeatureTransformer) Fit(records ...RawRecord) error {
	names := FeatureSchema().Names()
	for _, record := range records {
		features, err := t.Transform(record)
		if err != nil {
			return err
		}
		names = features.Names()
	}

	t.mu.Lock()
	t.featureNamesOut = names
	t.mu.Unlock()
	return nil
}

func (t *FeatureTransformer) Transform(record RawRecord) (FeatureRecord, error) {
	if err := record.Validate(); err != nil {
		return FeatureRecord{}, err
	}

	defaultCode, err := encodeYesNo("default", record.Default)
	if err != nil {
		return FeatureRecord{}, err
	}
	housingCode, err := encodeYesNo("housing", record.Housing)
	if err != nil {
		return FeatureRecord{}, err
	}
	loanCode, err := encodeYesNo("loan", record.Loan)
	if err != nil {
		return FeatureRecord{}, err
	}

	month, ok := monthIndex[record.Month]
	if !ok {
		return FeatureRecord{}, invalidInput("month", record.Month)
	}
	monthSin, monthCos := cyclical(float64(month), monthPeriod)
	daySin, dayCos := cyclical(float64(record.Day), dayPeriod)

	return FeatureRecord{
		Age:                  record.Age,
		Job:                  record.Job,
		Marital:              record.Marital,
		Education:            record.Education,
		Default:              defaultCode,
		Balance:              record.Balance,
		Housing:              housingCode,
		Loan:                 loanCode,
		Contact:              record.Contact,
		Campaign:             record.Campaign,
		Pdays:                record.Pdays,
		Previous:             record.Previous,
		Poutcome:             record.Poutcome,
		IsNonNegativeBalance: indicator(record.Balance >= 0),
		NewClient:            indicator(record.Pdays == -1),
		MonthSin:             monthSin,
		MonthCos:             monthCos,
		DaySin:               daySin,
		DayCos:               dayCos,
	}, nil
}

// FeatureNamesOut returns the ordered output names recorded by the last Fit,
// or nil if the transformer was never fitted.
func (t *FeatureTransformer) FeatureNamesOut() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.featureNamesOut == nil {
		return nil
	}
	return append([]string(nil), t.featureNamesOut...)
}

func (t *FeatureTransformer) Schema() Schema {
	return FeatureSchema()
}

func encodeYesNo(field, value string) (int, error) {
	code, ok := yesNoCodes[value]
	if !ok {
		return 0, invalidInput(field, value)
	}
	return code, nil
}

func cyclical(value, period float64) (float64, float64) {
	angle := 2 * math.Pi * value / period
	return math.Sin(angle), math.Cos(angle)
}

func indicator(cond bool) int {
	if cond {
		return 1
	}
	return 0
}
