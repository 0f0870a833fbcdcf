package http

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"bankpredict/inference"
	"bankpredict/ml"
	"bankpredict/monitoring"
)

//go:embed templates/index.html
var templateFS embed.FS

const (
	channelForm      = "form"
	channelAPI       = "api"
	channelWebSocket = "websocket"
)

type handlers struct {
	predictor     *inference.Predictor
	logger        *zap.Logger
	page          *template.Template
	requestSchema *gojsonschema.Schema
	upgrader      websocket.Upgrader
	modelType     string
}

type formOptions struct {
	Jobs       []string
	Maritals   []string
	Educations []string
	YesNo      []string
	Contacts   []string
	Months     []string
	Poutcomes  []string
}

type echoField struct {
	Name  string
	Value interface{}
}

type pageData struct {
	Record  ml.RawRecord
	Options formOptions
	Result  *inference.Result
	Error   string
	Echo    []echoField
	MinAge  int
	MaxAge  int
	MinDay  int
	MaxDay  int
}

func newHandlers(config ServerConfig, predictor *inference.Predictor, logger *zap.Logger) (*handlers, error) {
	if predictor == nil {
		return nil, errors.New("predictor is required")
	}
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	schema, err := newRequestSchema()
	if err != nil {
		return nil, fmt.Errorf("build request schema: %w", err)
	}
	origins := config.AllowedOrigins
	return &handlers{
		predictor:     predictor,
		logger:        logger,
		page:          page,
		requestSchema: schema,
		modelType:     config.ModelType,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(origins, origin)
			},
		},
	}, nil
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema := h.predictor.Schema()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"version":              schema.Version,
		"features":             schema.Features,
		"feature_names_out":    h.predictor.FeatureNames(),
		"model_type":           h.modelType,
		"supports_probability": h.predictor.SupportsProbability(),
	})
}

func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, pageData{Record: ml.DefaultRawRecord()})
}

func (h *handlers) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		err = fmt.Errorf("%w: %w", errMalformedRequest, err)
		h.recordFailure(r.Context(), channelForm, err)
		h.renderError(w, ml.DefaultRawRecord(), err)
		return
	}

	record, err := parseForm(r.PostForm)
	if err != nil {
		h.recordFailure(r.Context(), channelForm, err)
		h.renderError(w, record, err)
		return
	}
	result, err := h.predict(r.Context(), channelForm, record)
	if err != nil {
		h.renderError(w, record, err)
		return
	}
	h.renderPage(w, http.StatusOK, pageData{Record: record, Result: result, Echo: echoFields(record)})
}

func (h *handlers) handlePredictJSON(w http.ResponseWriter, r *http.Request) {
	record, err := h.readRecord(r)
	if err != nil {
		h.recordFailure(r.Context(), channelAPI, err)
		respondError(w, err)
		return
	}
	result, err := h.predict(r.Context(), channelAPI, record)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handlers) readRecord(r *http.Request) (ml.RawRecord, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ml.RawRecord{}, err
	}
	return decodeRawRecord(h.requestSchema, body)
}

// predict 调用预测器并记录指标
func (h *handlers) predict(ctx context.Context, channel string, record ml.RawRecord) (*inference.Result, error) {
	start := time.Now()
	result, err := h.predictor.Predict(ctx, record)
	monitoring.PredictionDuration.WithLabelValues(channel).Observe(time.Since(start).Seconds())
	if err != nil {
		h.recordFailure(ctx, channel, err)
		return nil, err
	}

	monitoring.PredictionsTotal.WithLabelValues(channel, result.Outcome).Inc()
	if result.Cached {
		monitoring.PredictionCacheHits.Inc()
	}
	return result, nil
}

func (h *handlers) recordFailure(ctx context.Context, channel string, err error) {
	_, resp := classifyError(err)
	monitoring.PredictionFailures.WithLabelValues(channel, string(resp.Code)).Inc()

	fields := []zap.Field{
		zap.String("request_id", GetRequestID(ctx)),
		zap.String("channel", channel),
		zap.String("code", string(resp.Code)),
		zap.Error(err),
	}
	if resp.Code == ErrCodePredictionFailed || resp.Code == ErrCodeInternal {
		h.logger.Error("prediction failed", fields...)
		return
	}
	h.logger.Debug("prediction rejected", fields...)
}

func (h *handlers) renderError(w http.ResponseWriter, record ml.RawRecord, err error) {
	status, resp := classifyError(err)
	h.renderPage(w, status, pageData{Record: record, Error: resp.Message})
}

func (h *handlers) renderPage(w http.ResponseWriter, status int, data pageData) {
	data.Options = formOptions{
		Jobs:       ml.JobValues,
		Maritals:   ml.MaritalValues,
		Educations: ml.EducationValues,
		YesNo:      ml.YesNoValues,
		Contacts:   ml.ContactValues,
		Months:     ml.MonthValues,
		Poutcomes:  ml.PoutcomeValues,
	}
	data.MinAge, data.MaxAge = ml.MinAge, ml.MaxAge
	data.MinDay, data.MaxDay = ml.MinDay, ml.MaxDay

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		h.logger.Error("render page failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func echoFields(r ml.RawRecord) []echoField {
	return []echoField{
		{"age", r.Age},
		{"job", r.Job},
		{"marital", r.Marital},
		{"education", r.Education},
		{"default", r.Default},
		{"balance", r.Balance},
		{"housing", r.Housing},
		{"loan", r.Loan},
		{"contact", r.Contact},
		{"day", r.Day},
		{"month", r.Month},
		{"campaign", r.Campaign},
		{"pdays", r.Pdays},
		{"previous", r.Previous},
		{"poutcome", r.Poutcome},
	}
}

func respondError(w http.ResponseWriter, err error) {
	status, resp := classifyError(err)
	respondJSON(w, status, resp)
}

// respondJSON 统一JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
