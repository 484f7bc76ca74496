package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/print-layout/internal/layout"
	"github.com/eugenenazirov/print-layout/internal/metrics"
	"github.com/eugenenazirov/print-layout/internal/pricing"
	"github.com/eugenenazirov/print-layout/internal/printjob"
	"github.com/eugenenazirov/print-layout/internal/render"
	"github.com/eugenenazirov/print-layout/internal/storage"
)

type contextKey string

const (
	requestIDContextKey     contextKey = "requestID"
	requestFieldsContextKey contextKey = "requestFields"
)

const (
	maxBodyBytes     = 1 << 20
	defaultMaxCopies = 5000
)

// Handler wires the packer, price schedule storage and metrics into HTTP handlers.
type Handler struct {
	packer  layout.Packer
	storage storage.Storage
	metrics *metrics.Metrics

	page      layout.PageSize
	padding   float64
	maxCopies int

	clock func() time.Time

	mu                sync.RWMutex
	scheduleUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics records quote and layout metrics.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithPage sets the sheet used when a layout request does not name one.
func WithPage(page layout.PageSize, padding float64) HandlerOption {
	return func(h *Handler) {
		h.page = page
		h.padding = padding
	}
}

// WithMaxCopies caps the total number of copies a single layout request may expand to.
func WithMaxCopies(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxCopies = n
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(packer layout.Packer, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		packer:    packer,
		storage:   store,
		page:      layout.A4,
		padding:   0.5,
		maxCopies: defaultMaxCopies,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.scheduleUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPricing(w http.ResponseWriter, r *http.Request) {
	_ = r
	schedule, err := h.storage.GetSchedule()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := pricingResponse{
		Schedule:  schedule,
		UpdatedAt: h.currentScheduleUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutPricing(w http.ResponseWriter, r *http.Request) {
	var req pricing.Schedule
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.storage.SetSchedule(req); err != nil {
		if errors.Is(err, storage.ErrInvalidSchedule) {
			writeError(w, http.StatusBadRequest, "Invalid price schedule", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markScheduleUpdated()

	schedule, err := h.storage.GetSchedule()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := pricingResponse{
		Schedule:  schedule,
		UpdatedAt: h.currentScheduleUpdatedAt(),
		Message:   "Price schedule updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	page, padding, ok := h.resolveSheet(w, req.sheetRequest)
	if !ok {
		return
	}

	schedule, err := h.storage.GetSchedule()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	var quote pricing.Quote
	if req.Strict {
		quote, err = schedule.QuoteStrict(req.Items, req.PaperType, req.DeliverySpeed)
	} else {
		quote = schedule.Quote(req.Items, req.PaperType, req.DeliverySpeed)
	}
	elapsed := time.Since(start)

	if err != nil {
		h.metrics.RecordQuote(elapsed, "invalid")
		switch {
		case errors.Is(err, printjob.ErrInvalidItem):
			writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
		case errors.Is(err, pricing.ErrUnknownPaperType):
			suggestion := fmt.Sprintf("Choose one of: %s", strings.Join(schedule.PaperTypes(), ", "))
			writeError(w, http.StatusUnprocessableEntity, "Unknown paper type", err.Error(), suggestion)
		case errors.Is(err, pricing.ErrUnknownDeliverySpeed):
			suggestion := fmt.Sprintf("Choose one of: %s", strings.Join(schedule.DeliverySpeeds(), ", "))
			writeError(w, http.StatusUnprocessableEntity, "Unknown delivery speed", err.Error(), suggestion)
		default:
			writeInternalError(w, err)
		}
		return
	}
	h.metrics.RecordQuote(elapsed, "success")
	annotateRequest(r.Context(),
		zap.Int("items", len(req.Items)),
		zap.Int("copies", quote.Copies),
		zap.String("paper_type", quote.PaperType),
		zap.String("delivery_speed", quote.DeliverySpeed),
	)

	lines := make([]quoteLine, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		lines = append(lines, quoteLine{
			Index:     line.Index,
			Copies:    line.Copies,
			Area:      line.Area,
			UnitPrice: pricing.Round(line.UnitPrice),
			LineTotal: pricing.Round(line.LineTotal),
		})
	}

	resp := quoteResponse{
		PaperType:         quote.PaperType,
		DeliverySpeed:     quote.DeliverySpeed,
		Lines:             lines,
		Copies:            quote.Copies,
		Subtotal:          pricing.Round(quote.Subtotal),
		Delivery:          pricing.Round(quote.Delivery),
		Total:             pricing.Round(quote.Total),
		NotPreviewed:      layout.Skipped(req.Items, page, padding),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLayout(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeLayoutRequest(w, r)
	if !ok {
		return
	}

	pages, skipped, elapsed, ok := h.pack(w, in)
	if !ok {
		return
	}
	annotateLayout(r, in, pages, skipped)

	resp := layoutResponse{
		Page:              in.page,
		Padding:           in.padding,
		Pages:             pages,
		Summary:           layout.Summarize(pages),
		Skipped:           skipped,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLayoutPDF(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeLayoutRequest(w, r)
	if !ok {
		return
	}

	pages, skipped, _, ok := h.pack(w, in)
	if !ok {
		return
	}
	annotateLayout(r, in, pages, skipped)

	var buf bytes.Buffer
	if err := render.Sheets(&buf, pages); err != nil {
		if errors.Is(err, render.ErrNoPages) {
			writeError(w, http.StatusUnprocessableEntity, "Nothing to render", err.Error(),
				"Add at least one item with copies that fits on the page")
			return
		}
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="layout.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func annotateLayout(r *http.Request, in layoutInput, pages []layout.PageBin, skipped []int) {
	annotateRequest(r.Context(),
		zap.Int("items", len(in.items)),
		zap.Int("pages", len(pages)),
		zap.Int("skipped", len(skipped)),
		zap.Float64("page_width", in.page.Width),
		zap.Float64("page_height", in.page.Height),
	)
}

type layoutInput struct {
	items   []printjob.PrintItem
	page    layout.PageSize
	padding float64
	strict  bool
}

func (h *Handler) decodeLayoutRequest(w http.ResponseWriter, r *http.Request) (layoutInput, bool) {
	var req layoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return layoutInput{}, false
	}

	page, padding, ok := h.resolveSheet(w, req.sheetRequest)
	if !ok {
		return layoutInput{}, false
	}
	in := layoutInput{
		items:   req.Items,
		page:    page,
		padding: padding,
		strict:  req.Strict,
	}
	if copies := printjob.TotalCopies(in.items); copies > h.maxCopies {
		writeError(w, http.StatusBadRequest, "Too many copies",
			fmt.Sprintf("order expands to %d copies, the limit is %d", copies, h.maxCopies),
			"Split the order into smaller batches")
		return layoutInput{}, false
	}
	return in, true
}

// resolveSheet picks the page from an explicit size, then a named size, then
// the handler default. Padding falls back to the handler default.
func (h *Handler) resolveSheet(w http.ResponseWriter, req sheetRequest) (layout.PageSize, float64, bool) {
	page, padding := h.page, h.padding
	switch {
	case req.Page != nil:
		page = *req.Page
	case req.PageSize != "":
		size, err := layout.ParsePageSize(req.PageSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid page size", err.Error(), "Use A4, A5, Letter or WIDTHxHEIGHT in centimetres")
			return layout.PageSize{}, 0, false
		}
		page = size
	}
	if req.Padding != nil {
		padding = *req.Padding
	}

	if !page.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid page size", layout.ErrInvalidPage.Error())
		return layout.PageSize{}, 0, false
	}
	if !page.Usable(padding) {
		writeError(w, http.StatusBadRequest, "Invalid padding", layout.ErrInvalidPadding.Error())
		return layout.PageSize{}, 0, false
	}
	return page, padding, true
}

func (h *Handler) pack(w http.ResponseWriter, in layoutInput) ([]layout.PageBin, []int, time.Duration, bool) {
	start := time.Now()
	var (
		pages []layout.PageBin
		err   error
	)
	if in.strict {
		pages, err = layout.PackStrict(in.items, in.page, in.padding)
	} else {
		pages = h.packer.Pack(in.items, in.page, in.padding)
	}
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, printjob.ErrInvalidItem):
			writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
		case errors.Is(err, layout.ErrItemTooLarge):
			writeError(w, http.StatusUnprocessableEntity, "Item too large", err.Error(),
				"Reduce the item size or choose a larger page")
		default:
			writeError(w, http.StatusBadRequest, "Invalid layout", err.Error())
		}
		return nil, nil, elapsed, false
	}

	skipped := layout.Skipped(in.items, in.page, in.padding)
	h.metrics.RecordLayout(elapsed, len(pages), len(skipped))
	return pages, skipped, elapsed, true
}

func (h *Handler) currentScheduleUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.scheduleUpdatedAt
}

func (h *Handler) markScheduleUpdated() {
	h.mu.Lock()
	h.scheduleUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// sheetRequest optionally names the sheet a request is laid out on.
type sheetRequest struct {
	PageSize string           `json:"pageSize"`
	Page     *layout.PageSize `json:"page"`
	Padding  *float64         `json:"padding"`
}

type quoteRequest struct {
	sheetRequest
	Items         []printjob.PrintItem `json:"items"`
	PaperType     string               `json:"paperType"`
	DeliverySpeed string               `json:"deliverySpeed"`
	Strict        bool                 `json:"strict"`
}

type layoutRequest struct {
	sheetRequest
	Items  []printjob.PrintItem `json:"items"`
	Strict bool                 `json:"strict"`
}

type quoteLine struct {
	Index     int     `json:"index"`
	Copies    int     `json:"copies"`
	Area      float64 `json:"area"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type quoteResponse struct {
	PaperType         string      `json:"paperType"`
	DeliverySpeed     string      `json:"deliverySpeed"`
	Lines             []quoteLine `json:"lines"`
	Copies            int         `json:"copies"`
	Subtotal          float64     `json:"subtotal"`
	Delivery          float64     `json:"delivery"`
	Total             float64     `json:"total"`
	// NotPreviewed lists items too large for the requested sheet, or the
	// default sheet when the request names none.
	NotPreviewed      []int       `json:"notPreviewed"`
	CalculationTimeMs int64       `json:"calculationTimeMs"`
}

type layoutResponse struct {
	Page              layout.PageSize  `json:"page"`
	Padding           float64          `json:"padding"`
	Pages             []layout.PageBin `json:"pages"`
	Summary           layout.Summary   `json:"summary"`
	Skipped           []int            `json:"skipped"`
	CalculationTimeMs int64            `json:"calculationTimeMs"`
}

type pricingResponse struct {
	Schedule  pricing.Schedule `json:"schedule"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Message   string           `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
