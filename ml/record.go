package ml

type RawRecord struct {
	Age       int    `json:"age" yaml:"age"`
	Job       string `json:"job" yaml:"job"`
	Marital   string `json:"marital" yaml:"marital"`
	Education string `json:"education" yaml:"education"`
	Default   string `json:"default" yaml:"default"`
	Balance   int    `json:"balance" yaml:"balance"`
	Housing   string `json:"housing" yaml:"housing"`
	Loan      string `json:"loan" yaml:"loan"`
	Contact   string `json:"contact" yaml:"contact"`
	Day       int    `json:"day" yaml:"day"`
	Month     string `json:"month" yaml:"month"`
	Campaign  int    `json:"campaign" yaml:"campaign"`
	Pdays     int    `json:"pdays" yaml:"pdays"`
	Previous  int    `json:"previous" yaml:"previous"`
	Poutcome  string `json:"poutcome" yaml:"poutcome"`
}

var (
	JobValues       = []string{"admin.", "blue-collar", "entrepreneur", "housemaid", "management", "retired", "self-employed", "services", "student", "technician", "unemployed", "unknown"}
	MaritalValues   = []string{"single", "married", "divorced"}
	EducationValues = []string{"primary", "secondary", "tertiary", "unknown"}
	YesNoValues     = []string{"yes", "no"}
	ContactValues   = []string{"cellular", "telephone", "unknown"}
	MonthValues     = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
	PoutcomeValues  = []string{"success", "failure", "other", "unknown"}
)

const (
	MinAge = 18
	MaxAge = 100
	MinDay = 1
	MaxDay = 31
)

// DefaultRawRecord matches the initial state of the input form.
func DefaultRawRecord() RawRecord {
	return RawRecord{
		Age:       35,
		Job:       JobValues[0],
		Marital:   MaritalValues[0],
		Education: EducationValues[0],
		Default:   "yes",
		Balance:   0,
		Housing:   "yes",
		Loan:      "yes",
		Contact:   ContactValues[0],
		Day:       15,
		Month:     MonthValues[0],
		Campaign:  1,
		Pdays:     -1,
		Previous:  0,
		Poutcome:  PoutcomeValues[0],
	}
}

// Validate reports the first field, in declaration order, that lies outside its domain.
func (r RawRecord) Validate() error {
	if r.Age < MinAge || r.Age > MaxAge {
		return invalidInput("age", r.Age)
	}
	if !oneOf(r.Job, JobValues) {
		return invalidInput("job", r.Job)
	}
	if !oneOf(r.Marital, MaritalValues) {
		return invalidInput("marital", r.Marital)
	}
	if !oneOf(r.Education, EducationValues) {
		return invalidInput("education", r.Education)
	}
	if !oneOf(r.Default, YesNoValues) {
		return invalidInput("default", r.Default)
	}
	if !oneOf(r.Housing, YesNoValues) {
		return invalidInput("housing", r.Housing)
	}
	if !oneOf(r.Loan, YesNoValues) {
		return invalidInput("loan", r.Loan)
	}
	if !oneOf(r.Contact, ContactValues) {
		return invalidInput("contact", r.Contact)
	}
	if r.Day < MinDay || r.Day > MaxDay {
		return invalidInput("day", r.Day)
	}
	if !oneOf(r.Month, MonthValues) {
		return invalidInput("month", r.Month)
	}
	if r.Campaign < 1 {
		return invalidInput("campaign", r.Campaign)
	}
	if r.Pdays < -1 {
		return invalidInput("pdays", r.Pdays)
	}
	if r.Previous < 0 {
		return invalidInput("previous", r.Previous)
	}
	if !oneOf(r.Poutcome, PoutcomeValues) {
		return invalidInput("poutcome", r.Poutcome)
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
