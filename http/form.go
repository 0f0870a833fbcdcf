package http

import (
	"net/url"
	"strconv"
	"strings"

	"bankpredict/ml"
)

// parseForm 从表单值构建RawRecord，数值字段解析失败时返回InvalidInputError
func parseForm(values url.Values) (ml.RawRecord, error) {
	record := ml.RawRecord{
		Job:       strings.TrimSpace(values.Get("job")),
		Marital:   strings.TrimSpace(values.Get("marital")),
		Education: strings.TrimSpace(values.Get("education")),
		Default:   strings.TrimSpace(values.Get("default")),
		Housing:   strings.TrimSpace(values.Get("housing")),
		Loan:      strings.TrimSpace(values.Get("loan")),
		Contact:   strings.TrimSpace(values.Get("contact")),
		Month:     strings.TrimSpace(values.Get("month")),
		Poutcome:  strings.TrimSpace(values.Get("poutcome")),
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{"age", &record.Age},
		{"balance", &record.Balance},
		{"day", &record.Day},
		{"campaign", &record.Campaign},
		{"pdays", &record.Pdays},
		{"previous", &record.Previous},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(values.Get(f.field))
		n, err := strconv.Atoi(raw)
		if err != nil {
			return record, &ml.InvalidInputError{Field: f.field, Value: raw}
		}
		*f.dst = n
	}
	return record, nil
}
