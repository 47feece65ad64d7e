package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestTimeLogsOperation(t *testing.T) {
	buf := captureLog(t)
	ctx := WithRequestID(context.Background(), "req-1")

	Time(ctx, "schedule.for_date")(nil)
	assert.Contains(t, buf.String(), "req_id=req-1 op=schedule.for_date")
	assert.NotContains(t, buf.String(), "err=")
}

func TestTimeLogsError(t *testing.T) {
	buf := captureLog(t)
	err := errors.New("boom")

	Time(context.Background(), "analytics.by_route")(&err)
	assert.Contains(t, buf.String(), "op=analytics.by_route")
	assert.Contains(t, buf.String(), "err=boom")
}
