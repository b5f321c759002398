package middleware

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dzonerzy/go-pparse/internal/pool"
)

// RequestInfo contains information about one handler invocation
type RequestInfo struct {
	Command   string
	Args      []string
	StartTime time.Time
	Duration  time.Duration
	ExitCode  int
	Error     error
	Metadata  map[string]any
}

// requestInfoPool is a global pool for RequestInfo objects to reduce allocations
var requestInfoPool = pool.NewPoolWithReset(
	func() *RequestInfo {
		return &RequestInfo{
			Metadata: make(map[string]any, 4),
		}
	},
	func(info *RequestInfo) {
		info.Command = ""
		info.Args = info.Args[:0]
		info.StartTime = time.Time{}
		info.Duration = 0
		info.ExitCode = 0
		info.Error = nil
		for k := range info.Metadata {
			delete(info.Metadata, k)
		}
	},
)

// requestIDKey is the metadata key carrying a run's request id.
const requestIDKey = "logger.request_id"

// Logger creates a middleware that logs handler runs to the configured output.
func Logger(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return LoggerWithWriter(getLogWriter(config.LogOutput), options...)
}

// LoggerWithWriter creates a logger middleware that writes to a specific writer
func LoggerWithWriter(writer io.Writer, options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next Handler) Handler {
		return func(res Result) (int, error) {
			if config.LogLevel == LogLevelNone || writer == nil {
				return next(res)
			}

			info := requestInfoPool.Get()
			defer requestInfoPool.Put(info)

			if config.RequestIDs && res.Get(requestIDKey) == nil {
				res.Set(requestIDKey, uuid.NewString())
			}
			info.Command = commandPath(res)
			info.Args = append(info.Args, res.Args()...)
			info.StartTime = time.Now()

			if config.LogLevel >= LogLevelDebug {
				logRequest(writer, config, info, "START")
			}

			code, err := next(res)

			info.Duration = time.Since(info.StartTime)
			info.ExitCode = code
			info.Error = err
			if id, ok := res.Get(requestIDKey).(string); ok {
				info.Metadata["request_id"] = id
			}

			logRequest(writer, config, info, getLogLevel(code, err))
			return code, err
		}
	}
}

// getLogLevel determines log level based on error status
func getLogLevel(code int, err error) string {
	if err != nil {
		return "ERROR"
	}
	if code != 0 {
		return "WARN"
	}
	return "SUCCESS"
}

// shouldLog determines if the log level warrants logging
func shouldLog(configLevel LogLevel, messageLevel string) bool {
	switch messageLevel {
	case "ERROR":
		return configLevel >= LogLevelError
	case "WARN":
		return configLevel >= LogLevelWarn
	case "START":
		return configLevel >= LogLevelDebug
	default:
		return configLevel >= LogLevelInfo
	}
}

func getLogWriter(output LogOutput) io.Writer {
	switch output {
	case LogOutputStdout:
		return os.Stdout
	case LogOutputNone:
		return nil
	default:
		return os.Stderr
	}
}

func logRequest(writer io.Writer, config *MiddlewareConfig, info *RequestInfo, level string) {
	if !shouldLog(config.LogLevel, level) {
		return
	}
	switch config.LogFormat {
	case LogFormatJSON:
		writeJSONLog(writer, info, level, config)
	default:
		writeTextLog(writer, info, level, config)
	}
}

// writeTextLog writes a human-readable text log entry with minimal allocations
func writeTextLog(writer io.Writer, info *RequestInfo, level string, config *MiddlewareConfig) {
	buf := pool.GetBuffer(256)
	defer pool.PutBuffer(buf)

	*buf = append(*buf, '[')
	*buf = append(*buf, info.StartTime.Format("2006-01-02 15:04:05")...)
	*buf = append(*buf, "] "...)
	*buf = append(*buf, level...)
	*buf = append(*buf, " command=\""...)
	*buf = append(*buf, info.Command...)
	*buf = append(*buf, '"')

	if level != "START" {
		*buf = append(*buf, " exit="...)
		*buf = strconv.AppendInt(*buf, int64(info.ExitCode), 10)
	}

	if info.Duration > 0 {
		*buf = append(*buf, " duration="...)
		*buf = append(*buf, info.Duration.String()...)
	}

	if config.IncludeArgs && len(info.Args) > 0 {
		*buf = append(*buf, " args="...)
		for i, arg := range info.Args {
			if i > 0 {
				*buf = append(*buf, ' ')
			}
			*buf = append(*buf, arg...)
		}
	}

	if info.Error != nil {
		*buf = append(*buf, " error="...)
		*buf = strconv.AppendQuote(*buf, info.Error.Error())
	}

	if id, ok := info.Metadata["request_id"].(string); ok {
		*buf = append(*buf, " request_id="...)
		*buf = append(*buf, id...)
	}

	*buf = append(*buf, '\n')

	//nolint:errcheck,gosec // Logging is best-effort; ignore write errors.
	writer.Write(*buf)
}

// writeJSONLog writes a structured JSON log entry with minimal allocations
func writeJSONLog(writer io.Writer, info *RequestInfo, level string, config *MiddlewareConfig) {
	buf := pool.GetBuffer(512)
	defer pool.PutBuffer(buf)

	*buf = append(*buf, `{"timestamp":"`...)
	*buf = append(*buf, info.StartTime.Format(time.RFC3339)...)
	*buf = append(*buf, `","level":"`...)
	*buf = append(*buf, level...)
	*buf = append(*buf, `","command":`...)
	enc, _ := json.Marshal(info.Command)
	*buf = append(*buf, enc...)

	if level != "START" {
		*buf = append(*buf, `,"exit_code":`...)
		*buf = strconv.AppendInt(*buf, int64(info.ExitCode), 10)
	}

	if info.Duration > 0 {
		*buf = append(*buf, `,"duration_ms":`...)
		*buf = strconv.AppendInt(*buf, info.Duration.Milliseconds(), 10)
	}

	if config.IncludeArgs && len(info.Args) > 0 {
		*buf = append(*buf, `,"args":[`...)
		for i, arg := range info.Args {
			if i > 0 {
				*buf = append(*buf, ',')
			}
			enc, _ := json.Marshal(arg)
			*buf = append(*buf, enc...)
		}
		*buf = append(*buf, ']')
	}

	if info.Error != nil {
		*buf = append(*buf, `,"error":`...)
		enc, _ := json.Marshal(info.Error.Error())
		*buf = append(*buf, enc...)
	}

	// metadata is rare; fall back to json.Marshal
	if len(info.Metadata) > 0 {
		if metadataJSON, err := json.Marshal(info.Metadata); err == nil {
			*buf = append(*buf, `,"metadata":`...)
			*buf = append(*buf, metadataJSON...)
		}
	}

	*buf = append(*buf, "}\n"...)

	//nolint:errcheck,gosec // Logging is best-effort; ignore write errors.
	writer.Write(*buf)
}

// Convenience constructors for common logging scenarios

// DebugLogger creates a logger with debug level (logs everything)
func DebugLogger() Middleware {
	return Logger(WithLogLevel(LogLevelDebug))
}

// ErrorLogger creates a logger with error level (logs only errors)
func ErrorLogger() Middleware {
	return Logger(WithLogLevel(LogLevelError))
}

// JSONLogger creates a logger that outputs JSON format
func JSONLogger() Middleware {
	return Logger(WithLogFormat(LogFormatJSON))
}

// SilentLogger creates a logger that doesn't output anything (useful for testing)
func SilentLogger() Middleware {
	return Logger(func(config *MiddlewareConfig) {
		config.LogOutput = LogOutputNone
	})
}
