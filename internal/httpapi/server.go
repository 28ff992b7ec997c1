package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"rembgd/internal/imaging"
	"rembgd/internal/pipeline"
	"rembgd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ValidateUpload(u pipeline.Upload) error
	Process(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	MaxUploadSize() int64
	Ready() bool
	Status() types.StatusResponse
}

// serviceVersion is reported by /health.
var serviceVersion = "1.0.1"

// SetVersion overrides the version string reported by /health.
func SetVersion(v string) {
	if v != "" {
		serviceVersion = v
	}
}

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context that is canceled when either a or b is done.
// The returned cancel func must be called to release the goroutine when handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Browser clients upload directly; expose the processing headers.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "X-Requested-With", "Cache-Control", "X-Log-Level"},
		ExposedHeaders: []string{"X-Processing-Time", "X-Original-Size", "X-Output-Size", "X-Output-Format", "Content-Disposition"},
		MaxAge:         3600,
	}))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)

	r.Post("/remove-background", func(w http.ResponseWriter, r *http.Request) {
		handleRemoveBackground(svc, w, r)
	})
	r.Post("/remove-background-base64", func(w http.ResponseWriter, r *http.Request) {
		handleRemoveBackgroundBase64(svc, w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			writeJSONError(w, http.StatusServiceUnavailable, "service unavailable: engine not ready")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.HealthResponse{
			Status:  "healthy",
			Message: "All services are operational - Ready to process images",
			Version: serviceVersion,
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler())

	return r
}

// uploadForm is the parsed multipart surface shared by both endpoints.
type uploadForm struct {
	filename    string
	contentType string
	data        []byte
	format      imaging.Format
	quality     int
}

// parseUploadForm reads the multipart body. A non-nil error here is a
// transport-level failure on both endpoints (malformed multipart, bad
// option values), distinct from the business validation gate.
func parseUploadForm(svc Service, w http.ResponseWriter, r *http.Request) (uploadForm, error) {
	var f uploadForm
	// Slack above the upload ceiling so the size check rejects with a
	// classified error instead of a connection reset mid-body.
	r.Body = http.MaxBytesReader(w, r.Body, svc.MaxUploadSize()+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return f, fmt.Errorf("invalid multipart body: %w", err)
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		return f, errors.New("file field is required")
	}
	defer file.Close()

	f.filename = hdr.Filename
	f.contentType = hdr.Header.Get("Content-Type")

	f.format, err = imaging.ParseFormat(r.FormValue("output_format"))
	if err != nil {
		return f, err
	}
	f.quality = 95
	if q := r.FormValue("quality"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 100 {
			return f, fmt.Errorf("quality must be an integer between 1 and 100")
		}
		f.quality = n
	}
	f.data, err = io.ReadAll(file)
	if err != nil {
		return f, fmt.Errorf("read upload: %w", err)
	}
	return f, nil
}

// handleRemoveBackground streams the processed image back as a binary body.
//
// @Summary      Remove background from an image
// @Tags         background-removal
// @Accept       multipart/form-data
// @Produce      image/png
// @Param        file formData file true "Image file (jpg, jpeg, png, bmp, tiff, webp)"
// @Param        output_format formData string false "PNG or WEBP" default(PNG)
// @Param        quality formData int false "WEBP quality 1-100" default(95)
// @Success      200 {file} binary
// @Failure      400 {object} types.ErrorResponse
// @Failure      413 {object} types.ErrorResponse
// @Failure      429 {object} types.ErrorResponse
// @Failure      500 {object} types.ErrorResponse
// @Router       /remove-background [post]
func handleRemoveBackground(svc Service, w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lvl := requestLogLevel(r)

	form, err := parseUploadForm(svc, w, r)
	if err != nil {
		status := http.StatusBadRequest
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSONError(w, status, err.Error())
		logRequestEnd(r, lvl, status, start, err)
		return
	}

	up := pipeline.Upload{Filename: form.filename, ContentType: form.contentType, Size: int64(len(form.data))}
	if err := svc.ValidateUpload(up); err != nil {
		status := http.StatusBadRequest
		if pipeline.IsPayloadTooLarge(err) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSONError(w, status, err.Error())
		logRequestEnd(r, lvl, status, start, err)
		return
	}

	// Join server base context with request context so shutdown is visible
	// while the unit waits for admission. A running unit is never preempted.
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	res, err := svc.Process(joinedCtx, pipeline.Request{Data: form.data, Format: form.format, Quality: form.quality})
	if err != nil {
		// Client disconnected while queued; nothing to write.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := processErrorStatus(err)
		if status == http.StatusTooManyRequests {
			IncrementBackpressure("pool_full")
		}
		writeJSONError(w, status, err.Error())
		logRequestEnd(r, lvl, status, start, err)
		return
	}

	w.Header().Set("Content-Type", res.Format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+imaging.OutputFilename(form.filename, res.Format))
	w.Header().Set("X-Processing-Time", fmt.Sprintf("%.2fs", res.Elapsed.Seconds()))
	w.Header().Set("X-Original-Size", strconv.Itoa(len(form.data)))
	w.Header().Set("X-Output-Size", strconv.Itoa(res.Size))
	w.Header().Set("X-Output-Format", string(res.Format))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(res.Data)
	logRequestEnd(r, lvl, http.StatusOK, start, nil)
}

// handleRemoveBackgroundBase64 wraps the same pipeline outcome in a JSON
// envelope. Deliberate contract carried over from the original API: business
// failures (validation, capacity, engine) always come back HTTP 200 with
// success=false; only transport failures use error statuses.
//
// @Summary      Remove background, base64 JSON envelope
// @Tags         background-removal
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Image file (jpg, jpeg, png, bmp, tiff, webp)"
// @Param        output_format formData string false "PNG or WEBP" default(PNG)
// @Param        quality formData int false "WEBP quality 1-100" default(95)
// @Success      200 {object} types.RemoveBackgroundResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /remove-background-base64 [post]
func handleRemoveBackgroundBase64(svc Service, w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lvl := requestLogLevel(r)

	form, err := parseUploadForm(svc, w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		logRequestEnd(r, lvl, http.StatusBadRequest, start, err)
		return
	}
	filename := form.filename
	if filename == "" {
		filename = "image"
	}

	up := pipeline.Upload{Filename: form.filename, ContentType: form.contentType, Size: int64(len(form.data))}
	if err := svc.ValidateUpload(up); err != nil {
		writeEnvelope(w, types.RemoveBackgroundResponse{
			Message:        "Validation failed: " + err.Error(),
			ProcessingTime: time.Since(start).Seconds(),
		})
		logRequestEnd(r, lvl, http.StatusOK, start, err)
		return
	}

	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	res, err := svc.Process(joinedCtx, pipeline.Request{Data: form.data, Format: form.format, Quality: form.quality})
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		if pipeline.IsTooBusy(err) {
			IncrementBackpressure("pool_full")
		}
		writeEnvelope(w, types.RemoveBackgroundResponse{
			Message:        "Background removal failed: " + err.Error(),
			ProcessingTime: time.Since(start).Seconds(),
		})
		logRequestEnd(r, lvl, http.StatusOK, start, err)
		return
	}

	writeEnvelope(w, types.RemoveBackgroundResponse{
		Success:          true,
		Message:          "Background removed successfully from " + filename,
		Base64Image:      base64.StdEncoding.EncodeToString(res.Data),
		ProcessingTime:   res.Elapsed.Seconds(),
		OutputFormat:     res.Format.Ext(),
		OriginalSize:     len(form.data),
		OutputSize:       res.Size,
		CompressionRatio: compressionRatio(len(form.data), res.Size),
	})
	logRequestEnd(r, lvl, http.StatusOK, start, nil)
}

// compressionRatio is the size reduction percentage rounded to 2 decimals,
// clamped to 0 when the output is not smaller than the input.
func compressionRatio(originalSize, outputSize int) float64 {
	if originalSize <= 0 || outputSize >= originalSize {
		return 0
	}
	ratio := (1 - float64(outputSize)/float64(originalSize)) * 100
	return math.Round(ratio*100) / 100
}

// processErrorStatus maps pipeline errors to HTTP status codes for the
// streaming endpoint.
func processErrorStatus(err error) int {
	switch {
	case pipeline.IsTooBusy(err):
		return http.StatusTooManyRequests
	case pipeline.IsNotReady(err):
		return http.StatusServiceUnavailable
	case pipeline.IsEngine(err):
		return http.StatusInternalServerError
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func logRequestEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	if lvl < LevelInfo {
		return
	}
	if zlog != nil {
		z := zlog.Info().Str("path", r.URL.Path).Int("status", status).Dur("dur", time.Since(start))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg("request end")
		return
	}
	if err != nil {
		log.Printf("request end path=%s status=%d dur=%s err=%v", r.URL.Path, status, time.Since(start), err)
		return
	}
	log.Printf("request end path=%s status=%d dur=%s", r.URL.Path, status, time.Since(start))
}

func writeEnvelope(w http.ResponseWriter, resp types.RemoveBackgroundResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{
		Error: msg,
		Code:  status,
	})
}
