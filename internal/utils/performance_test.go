package utils

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageTimer_Stop(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	timer := StartStage("encode", log)
	d := timer.Stop()
	assert.GreaterOrEqual(t, d, time.Duration(0))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "encode", entry["stage"])
}

func TestStageTimer_SlowStageWarns(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	timer := StartStage("optimize", log)
	timer.slow = 0
	time.Sleep(time.Millisecond)
	timer.Stop()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
}

func TestMeasureQuery(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := MeasureQuery("append_points", log)
	done(50)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "append_points", entry["query"])
	assert.Equal(t, float64(50), entry["rows_affected"])
}
