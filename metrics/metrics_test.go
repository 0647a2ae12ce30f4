// file: metrics/metrics_test.go
package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamepad-websocket/models"
)

var statsTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleStats() models.Statistics {
	return models.Statistics{
		Time: statsTime,
		Sockets: []models.SocketStatistics{
			{Sent: 10, Received: 1},
			{Sent: 4, Received: 2},
		},
	}
}

func TestStore_KeepsLatestCopy(t *testing.T) {
	s := NewStore()
	_, ok := s.Latest()
	assert.False(t, ok)

	stats := sampleStats()
	s.WriteStatistics(stats)
	stats.Sockets[0].Sent = 99

	got, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(10), got.Sockets[0].Sent)
	assert.Equal(t, statsTime, got.Time)
}

func TestFanout_ForwardsToAll(t *testing.T) {
	a, b := NewStore(), NewStore()
	Fanout{a, nil, b}.WriteStatistics(sampleStats())

	_, okA := a.Latest()
	_, okB := b.Latest()
	assert.True(t, okA)
	assert.True(t, okB)
}

func TestPrometheus_Gauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.WriteStatistics(sampleStats())
	assert.Equal(t, 2.0, testutil.ToFloat64(p.active))
	assert.Equal(t, 14.0, testutil.ToFloat64(p.sent))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.received))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.updates))

	p.WriteStatistics(models.Statistics{Time: statsTime})
	assert.Equal(t, 0.0, testutil.ToFloat64(p.active))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.updates))

	// registering twice on the same registry fails
	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

type fakeCloudWatch struct {
	cloudwatchiface.CloudWatchAPI
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(in *cloudwatch.PutMetricDataInput) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func (f *fakeCloudWatch) calls() []*cloudwatch.PutMetricDataInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*cloudwatch.PutMetricDataInput(nil), f.inputs...)
}

func TestCloudWatch_FlushSendsLatestOnce(t *testing.T) {
	fake := &fakeCloudWatch{}
	cw := NewCloudWatch(fake, "GamepadWebsocket", "/ws", 0)

	cw.Flush()
	assert.Empty(t, fake.calls(), "nothing written yet")

	cw.WriteStatistics(models.Statistics{Time: statsTime})
	cw.WriteStatistics(sampleStats())
	cw.Flush()
	cw.Flush()

	calls := fake.calls()
	require.Len(t, calls, 1)
	in := calls[0]
	assert.Equal(t, "GamepadWebsocket", aws.StringValue(in.Namespace))
	require.Len(t, in.MetricData, 3)

	values := map[string]float64{}
	for _, d := range in.MetricData {
		values[aws.StringValue(d.MetricName)] = aws.Float64Value(d.Value)
		assert.Equal(t, "/ws", aws.StringValue(d.Dimensions[0].Value))
		assert.Equal(t, statsTime, aws.TimeValue(d.Timestamp))
	}
	assert.Equal(t, map[string]float64{
		"ActiveConnections": 2,
		"MessagesSent":      14,
		"MessagesReceived":  3,
	}, values)
}

func TestCloudWatch_RunFlushesOnExit(t *testing.T) {
	fake := &fakeCloudWatch{err: errors.New("throttled")}
	cw := NewCloudWatch(fake, "ns", "/ws", time.Hour)
	cw.WriteStatistics(sampleStats())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cw.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	assert.Len(t, fake.calls(), 1)
}
