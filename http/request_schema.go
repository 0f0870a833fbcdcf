package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"bankpredict/ml"
)

var errMalformedRequest = errors.New("malformed request")

// rootField 是gojsonschema对请求体顶层的命名
const rootField = "(root)"

// rawRecordFields 按RawRecord声明顺序排列，用于选出第一个错误字段
var rawRecordFields = []string{
	"age", "job", "marital", "education", "default", "balance", "housing", "loan",
	"contact", "day", "month", "campaign", "pdays", "previous", "poutcome",
}

func enumProperty(values []string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values}
}

func integerProperty(bounds ...int) map[string]interface{} {
	prop := map[string]interface{}{"type": "integer"}
	if len(bounds) > 0 {
		prop["minimum"] = bounds[0]
	}
	if len(bounds) > 1 {
		prop["maximum"] = bounds[1]
	}
	return prop
}

// newRequestSchema 构建预测请求的JSON Schema
func newRequestSchema() (*gojsonschema.Schema, error) {
	doc := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             rawRecordFields,
		"properties": map[string]interface{}{
			"age":       integerProperty(ml.MinAge, ml.MaxAge),
			"job":       enumProperty(ml.JobValues),
			"marital":   enumProperty(ml.MaritalValues),
			"education": enumProperty(ml.EducationValues),
			"default":   enumProperty(ml.YesNoValues),
			"balance":   integerProperty(),
			"housing":   enumProperty(ml.YesNoValues),
			"loan":      enumProperty(ml.YesNoValues),
			"contact":   enumProperty(ml.ContactValues),
			"day":       integerProperty(ml.MinDay, ml.MaxDay),
			"month":     enumProperty(ml.MonthValues),
			"campaign":  integerProperty(1),
			"pdays":     integerProperty(-1),
			"previous":  integerProperty(0),
			"poutcome":  enumProperty(ml.PoutcomeValues),
		},
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
}

// decodeRawRecord 校验并解码JSON请求体
func decodeRawRecord(schema *gojsonschema.Schema, body []byte) (ml.RawRecord, error) {
	var record ml.RawRecord
	if len(bytes.TrimSpace(body)) == 0 {
		return record, fmt.Errorf("%w: empty body", errMalformedRequest)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return record, fmt.Errorf("%w: %v", errMalformedRequest, err)
	}
	if !result.Valid() {
		return record, firstSchemaError(result.Errors())
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&record); err != nil {
		// 例如 "age": 35.0 通过了integer校验，但无法解码为int
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return record, &ml.InvalidInputError{Field: typeErr.Field, Value: typeErr.Value}
		}
		return record, fmt.Errorf("%w: %v", errMalformedRequest, err)
	}
	return record, nil
}

func firstSchemaError(errs []gojsonschema.ResultError) error {
	best := -1
	var invalid *ml.InvalidInputError
	for _, e := range errs {
		field := e.Field()
		var value interface{}
		if field == rootField {
			property, ok := e.Details()["property"].(string)
			if !ok {
				// 请求体本身不是JSON对象
				return fmt.Errorf("%w: %s", errMalformedRequest, e.Description())
			}
			field = property
		} else {
			value = e.Value()
		}

		rank := len(rawRecordFields)
		for i, name := range rawRecordFields {
			if name == field {
				rank = i
				break
			}
		}
		if invalid == nil || rank < best {
			best = rank
			invalid = &ml.InvalidInputError{Field: field, Value: value}
		}
	}
	if invalid == nil {
		return fmt.Errorf("%w: schema validation failed", errMalformedRequest)
	}
	return invalid
}
