package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/resheikhi/samdash/entities"
	"github.com/resheikhi/samdash/predictor"
	"github.com/resheikhi/samdash/predictor/chart"
	"github.com/resheikhi/samdash/predictor/client/rabbit"
	"github.com/resheikhi/samdash/predictor/export/csv"
	"github.com/resheikhi/samdash/predictor/export/pdf"
	"github.com/resheikhi/samdash/predictor/export/xlsx"
)

type AsyncPredictor interface {
	Predict(ctx context.Context, req entities.PredictionRequest, cid string) (entities.Prediction, error)
}

type PredictionHandler struct {
	Logger      *zap.Logger
	DefaultDays int
	MaxDays     int
	TableRows   int
	ChartRows   int
	FileName    string
	// Async is nil when no worker queue is configured.
	Async AsyncPredictor
	Now   func() time.Time
}

func (h PredictionHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if _, err := w.Write([]byte("ok")); err != nil {
		h.Logger.Error(fmt.Errorf("write response: %w", err).Error(), zap.String("method", "Health"))
	}
}

func (h PredictionHandler) Index(w http.ResponseWriter, _ *http.Request) {
	h.renderPage(w, http.StatusOK, pageData{}, h.Logger.With(zap.String("method", "Index")))
}

func (h PredictionHandler) Page(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger.With(zap.String("method", "Page"))

	query := formValues(r)
	data := pageData{
		Rate:  query.Get("rate"),
		Price: query.Get("price"),
		Days:  query.Get("days"),
	}

	p, err := h.predictFromQuery(query)
	if err != nil {
		logger.Info(fmt.Errorf("parse input: %w", err).Error())
		data.Error = err.Error()
		h.renderPage(w, http.StatusBadRequest, data, logger)
		return
	}

	data.Result = newPageResult(p, query, h.TableRows, h.ChartRows)
	h.renderPage(w, http.StatusOK, data, logger)
}

func (h PredictionHandler) Chart(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "Chart", "text/html; charset=utf-8", "", func(out io.Writer, p entities.Prediction) error {
		return chart.Render(out, p, h.ChartRows)
	})
}

func (h PredictionHandler) DownloadXLSX(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "DownloadXLSX", xlsx.ContentType, h.FileName+".xlsx", xlsx.Write)
}

func (h PredictionHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "DownloadCSV", csv.ContentType, h.FileName+".csv", csv.Write)
}

func (h PredictionHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "DownloadPDF", pdf.ContentType, h.FileName+".pdf", func(out io.Writer, p entities.Prediction) error {
		return pdf.Write(out, p, h.TableRows, h.now())
	})
}

func (h PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger.With(zap.String("method", "Predict"))

	_, in, ok := h.decodeRequest(w, r, logger)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, predictor.Predict(in), logger)
}

func (h PredictionHandler) PredictAsync(w http.ResponseWriter, r *http.Request) {
	cid := uuid.New().String()
	logger := h.Logger.With(zap.String("method", "PredictAsync"), zap.String("cid", cid))

	if h.Async == nil {
		writeJSON(w, http.StatusServiceUnavailable, entities.ErrorResp{Error: "async prediction is not configured"}, logger)
		return
	}

	req, in, ok := h.decodeRequest(w, r, logger)
	if !ok {
		return
	}
	req.HorizonDays = &in.HorizonDays

	logger.Info("start run async")
	start := time.Now()

	res, err := h.Async.Predict(r.Context(), req, cid)
	if err != nil {
		logger.Error(fmt.Errorf("predict async: %w", err).Error())
		status := http.StatusBadGateway
		if errors.Is(err, rabbit.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, entities.ErrorResp{Error: err.Error()}, logger)
		return
	}

	logger.Info("finish run async", zap.Duration("duration", time.Since(start)))
	writeJSON(w, http.StatusOK, res, logger)
}

func (h PredictionHandler) decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (entities.PredictionRequest, predictor.Input, bool) {
	var req entities.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Info(fmt.Errorf("decode request: %w", err).Error())
		writeJSON(w, http.StatusBadRequest, entities.ErrorResp{Error: "invalid request body"}, logger)
		return req, predictor.Input{}, false
	}

	in, err := predictor.FromRequest(req, h.DefaultDays, h.MaxDays)
	if err != nil {
		logger.Info(fmt.Errorf("validate request: %w", err).Error())
		writeJSON(w, http.StatusBadRequest, entities.ErrorResp{Error: err.Error()}, logger)
		return req, predictor.Input{}, false
	}

	return req, in, true
}

func (h PredictionHandler) predictFromQuery(query url.Values) (entities.Prediction, error) {
	in, err := predictor.ParseInput(query.Get("rate"), query.Get("price"), query.Get("days"), h.DefaultDays, h.MaxDays)
	if err != nil {
		return entities.Prediction{}, err
	}
	return predictor.Predict(in), nil
}

func (h PredictionHandler) download(w http.ResponseWriter, r *http.Request, method, contentType, filename string,
	render func(io.Writer, entities.Prediction) error) {
	logger := h.Logger.With(zap.String("method", method))

	p, err := h.predictFromQuery(formValues(r))
	if err != nil {
		logger.Info(fmt.Errorf("parse input: %w", err).Error())
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, p); err != nil {
		logger.Error(fmt.Errorf("render %s: %w", contentType, err).Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error(fmt.Errorf("write response: %w", err).Error())
	}
}

func (h PredictionHandler) renderPage(w http.ResponseWriter, status int, data pageData, logger *zap.Logger) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logger.Error(fmt.Errorf("render page: %w", err).Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error(fmt.Errorf("write response: %w", err).Error())
	}
}

func (h PredictionHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// formValues keeps only the fields the form submits.
func formValues(r *http.Request) url.Values {
	q := r.URL.Query()
	values := url.Values{}
	for _, key := range []string{"rate", "price", "days"} {
		if v := q.Get(key); v != "" {
			values.Set(key, v)
		}
	}
	return values
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error(fmt.Errorf("encode response: %w", err).Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error(fmt.Errorf("write response: %w", err).Error())
	}
}
