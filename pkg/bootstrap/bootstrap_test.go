package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/abgdnv/giftcatalog/pkg/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_newLogger_JSON(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := newLogger(&buf, config.LogConfig{Level: "warn"})
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	// when
	log.InfoContext(ctx, "dropped")
	log.WarnContext(ctx, "kept", "ID", 7)

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, float64(7), record["ID"])
	assert.NotContains(t, record, "trace_id")
	assert.NotContains(t, record, "source")
}

func Test_newLogger_Formats(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      config.LogConfig
		contains []string
	}{
		{name: "text", cfg: config.LogConfig{Format: config.LogFormatText}, contains: []string{"level=INFO", "msg=hello", "request_id=req-1"}},
		{name: "debug adds source", cfg: config.LogConfig{Level: "debug"}, contains: []string{`"level":"DEBUG"`, `"source":`}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			log := newLogger(&buf, tc.cfg)
			ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

			// when
			if tc.cfg.SlogLevel() < 0 {
				log.DebugContext(ctx, "hello")
			} else {
				log.InfoContext(ctx, "hello")
			}

			// then
			for _, want := range tc.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func Test_poolConfig(t *testing.T) {
	testCases := []struct {
		name         string
		cfg          config.DatabaseConfig
		wantMaxConns int32
		wantErr      string
	}{
		{
			name:         "max conns applied",
			cfg:          config.DatabaseConfig{URL: "postgres://u:p@db:5432/products", Timeout: 3 * time.Second, MaxConns: 7},
			wantMaxConns: 7,
		},
		{
			name:         "url pool_max_conns kept when unset",
			cfg:          config.DatabaseConfig{URL: "postgres://u:p@db:5432/products?pool_max_conns=3", Timeout: time.Second},
			wantMaxConns: 3,
		},
		{
			name:    "unparsable url masks credentials",
			cfg:     config.DatabaseConfig{URL: "postgres://u:p@db:5432/products?pool_max_conns=many", Timeout: time.Second},
			wantErr: "failed to parse database URL ****@db:5432/products",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			poolCfg, err := poolConfig(tc.cfg)

			// then
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantMaxConns, poolCfg.MaxConns)
			assert.Equal(t, tc.cfg.Timeout, poolCfg.ConnConfig.ConnectTimeout)
			assert.Equal(t, "db", poolCfg.ConnConfig.Host)
		})
	}
}
