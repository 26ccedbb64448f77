package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DBDSN empty means the embedded in-memory SQLite store. All state is
	// volatile by design; a MySQL DSN can be supplied for local poking.
	DBDSN    string
	DBDriver string

	WorkerConcurrency int

	// PipelineDelayScale multiplies the simulated per-phase latency.
	// 0 removes the artificial delays entirely (tests).
	PipelineDelayScale float64

	// MaxProcessDuration bounds a single inquiry run. 0 disables the bound.
	MaxProcessDuration time.Duration

	// StreamCharDelay is the pause between streamed answer characters.
	StreamCharDelay time.Duration

	// ClassifierSeed pins the heuristic classifier's random source.
	// 0 seeds from the clock.
	ClassifierSeed int64

	CORSAllowOrigins []string
}

func Load() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3001"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	concurrency := 4
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			concurrency = n
		}
	}

	delayScale := 1.0
	if v := os.Getenv("PIPELINE_DELAY_SCALE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			delayScale = f
		}
	}

	maxProcess := 2 * time.Minute
	if v := os.Getenv("MAX_PROCESS_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			maxProcess = d
		}
	}

	charDelay := 50 * time.Millisecond
	if v := os.Getenv("STREAM_CHAR_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			charDelay = d
		}
	}

	var seed int64
	if v := os.Getenv("CLASSIFIER_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			seed = n
		}
	}

	origins := []string{"*"}
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		HTTPAddr:           addr,
		DBDSN:              os.Getenv("DB_DSN"),
		DBDriver:           driver,
		WorkerConcurrency:  concurrency,
		PipelineDelayScale: delayScale,
		MaxProcessDuration: maxProcess,
		StreamCharDelay:    charDelay,
		ClassifierSeed:     seed,
		CORSAllowOrigins:   origins,
	}
}
