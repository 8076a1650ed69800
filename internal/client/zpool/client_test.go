package zpool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zpoolmon/internal/config"
)

// createTestClient creates a client whose runner returns canned output per
// subcommand instead of shelling out.
func createTestClient(listOut, statusOut []byte, runErr error) *Client {
	c := NewClient(&config.SourceConfig{Command: "zpool", Timeout: 5 * time.Second}, zerolog.Nop())
	c.runner = func(ctx context.Context, command string, args ...string) ([]byte, error) {
		if runErr != nil {
			return nil, runErr
		}
		switch args[0] {
		case "list":
			return listOut, nil
		case "status":
			return statusOut, nil
		}
		return nil, errors.New("unexpected subcommand")
	}
	return c
}

const sampleListEnveloped = `{
  "pools": {
    "tank": {"name": "tank", "state": "ONLINE", "size": "1T", "allocated": "500G", "free": "524G", "capacity": "48%"}
  }
}`

const sampleListBare = `{
  "tank": {"name": "tank", "state": "ONLINE", "size": 1099511627776, "allocated": 536870912000, "free": 562640715776, "capacity": 48}
}`

const sampleStatus = `{
  "pools": {
    "tank": {
      "name": "tank",
      "vdevs": [{"name": "sda", "read_errors": 0, "write_errors": 0, "checksum_errors": 0}],
      "scan": {"scrub_end": 1752401472, "errors": 0}
    }
  }
}`

// =============================================================================
// Decode Tests
// =============================================================================

func TestDecodeListPayload_Enveloped(t *testing.T) {
	payload, err := decodeListPayload([]byte(sampleListEnveloped))
	require.NoError(t, err)
	require.Len(t, payload, 1)

	entry := payload["tank"]
	assert.Equal(t, "tank", entry.Name)
	assert.Equal(t, "ONLINE", entry.Health)
	assert.Equal(t, "1T", entry.Size)
}

func TestDecodeListPayload_Bare(t *testing.T) {
	payload, err := decodeListPayload([]byte(sampleListBare))
	require.NoError(t, err)
	require.Len(t, payload, 1)
	assert.Equal(t, "ONLINE", payload["tank"].Health)
}

func TestDecodeListPayload_LargeNumbersKeepPrecision(t *testing.T) {
	payload, err := decodeListPayload([]byte(sampleListBare))
	require.NoError(t, err)

	// Numbers survive as json.Number, not lossy float64.
	num, ok := payload["tank"].Size.(interface{ String() string })
	require.True(t, ok, "expected json.Number, got %T", payload["tank"].Size)
	assert.Equal(t, "1099511627776", num.String())
}

func TestDecodeListPayload_Invalid(t *testing.T) {
	_, err := decodeListPayload([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeStatusPayload_Enveloped(t *testing.T) {
	payload, err := decodeStatusPayload([]byte(sampleStatus))
	require.NoError(t, err)
	require.Len(t, payload, 1)

	entry := payload["tank"]
	require.Len(t, entry.Vdevs, 1)
	assert.Equal(t, "sda", entry.Vdevs[0].Name)
	assert.Contains(t, entry.Scan, "scrub_end")
}

// =============================================================================
// FetchPayloads Tests
// =============================================================================

func TestClient_FetchPayloads_Success(t *testing.T) {
	client := createTestClient([]byte(sampleListEnveloped), []byte(sampleStatus), nil)

	list, status, err := client.FetchPayloads(context.Background())

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, status, 1)
}

func TestClient_FetchPayloads_RunnerFailure(t *testing.T) {
	client := createTestClient(nil, nil, errors.New("executable not found"))

	_, _, err := client.FetchPayloads(context.Background())

	require.Error(t, err)
	var se *SourceError
	require.True(t, errors.As(err, &se))
	assert.False(t, se.Timeout)
	assert.False(t, IsTimeout(err))
}

func TestClient_FetchPayloads_TimeoutClassified(t *testing.T) {
	client := NewClient(&config.SourceConfig{Command: "zpool", Timeout: 10 * time.Millisecond}, zerolog.Nop())
	client.runner = func(ctx context.Context, command string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, _, err := client.FetchPayloads(context.Background())

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestClient_FetchPayloads_DecodeFailure(t *testing.T) {
	client := createTestClient([]byte("garbage"), []byte(sampleStatus), nil)

	_, _, err := client.FetchPayloads(context.Background())

	require.Error(t, err)
	var se *SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "list", se.Op)
}

// =============================================================================
// SourceError Tests
// =============================================================================

func TestSourceError_Messages(t *testing.T) {
	plain := &SourceError{Op: "status", Err: errors.New("exit status 1")}
	assert.True(t, strings.Contains(plain.Error(), "status failed"))

	timeout := &SourceError{Op: "list", Timeout: true, Err: context.DeadlineExceeded}
	assert.True(t, strings.Contains(timeout.Error(), "timed out"))
	assert.True(t, IsTimeout(timeout))
}

func TestIsTimeout_OtherErrors(t *testing.T) {
	assert.False(t, IsTimeout(errors.New("plain error")))
	assert.False(t, IsTimeout(nil))
}
