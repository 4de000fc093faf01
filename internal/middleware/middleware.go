package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderProcessTime = "X-Process-Time"
	HeaderCache       = "X-Cache"

	// RequestIDKey es la clave en el gin.Context
	RequestIDKey = "request_id"
)

// RequestID reutiliza el X-Request-ID entrante o genera uno nuevo
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// timingWriter escribe X-Process-Time justo antes de mandar las cabeceras
type timingWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	elapsed := float64(time.Since(w.start).Microseconds()) / 1000
	w.Header().Set(HeaderProcessTime, fmt.Sprintf("%.2fms", elapsed))
}

func (w *timingWriter) WriteHeaderNow() {
	if !w.Written() {
		w.stamp()
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(data []byte) (int, error) {
	if !w.Written() {
		w.stamp()
	}
	return w.ResponseWriter.Write(data)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	if !w.Written() {
		w.stamp()
	}
	return w.ResponseWriter.WriteString(s)
}

// ProcessTime añade X-Process-Time con el tiempo de servidor en milisegundos
func ProcessTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		w := &timingWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Writer = w
		c.Next()
		// respuestas sin cuerpo: gin escribe las cabeceras después de la cadena
		if !w.Written() {
			w.stamp()
		}
	}
}

// Timeout acota el contexto de cada request
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger loguea cada request con zerolog
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes", c.Writer.Size()).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("client_ip", c.ClientIP()).
			Str("cache", c.Writer.Header().Get(HeaderCache)).
			Msg("request")
	}
}

// CORS solo permite lectura desde los orígenes configurados
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Accept", "Content-Type", "If-None-Match", HeaderRequestID},
		ExposeHeaders:    []string{HeaderProcessTime, HeaderCache, HeaderRequestID, "ETag", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}
