// file: metrics/cloudwatch.go
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"

	"gamepad-websocket/logger"
	"gamepad-websocket/models"
)

const defaultFlushInterval = time.Minute

// CloudWatch pushes the latest snapshot on a fixed interval. Writes only
// record the snapshot, so the network loop never waits on AWS.
type CloudWatch struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
	endpoint  string
	interval  time.Duration

	mu     sync.Mutex
	latest models.Statistics
	dirty  bool
}

// NewCloudWatchClient builds a client from the default AWS credential chain.
func NewCloudWatchClient() (cloudwatchiface.CloudWatchAPI, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return cloudwatch.New(sess), nil
}

// NewCloudWatch returns a sink tagging every datum with the endpoint path.
func NewCloudWatch(client cloudwatchiface.CloudWatchAPI, namespace, endpoint string, interval time.Duration) *CloudWatch {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	return &CloudWatch{client: client, namespace: namespace, endpoint: endpoint, interval: interval}
}

// WriteStatistics implements Writer.
func (c *CloudWatch) WriteStatistics(stats models.Statistics) {
	c.mu.Lock()
	c.latest = stats
	c.dirty = true
	c.mu.Unlock()
}

// Run flushes until ctx is done, with a last flush on the way out.
func (c *CloudWatch) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Flush()
			return
		case <-ticker.C:
			c.Flush()
		}
	}
}

// Flush sends the latest snapshot if it changed since the last flush.
func (c *CloudWatch) Flush() {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	stats := c.latest
	c.dirty = false
	c.mu.Unlock()

	sent, received := totals(stats)
	ts := stats.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := c.client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []*cloudwatch.MetricDatum{
			c.datum("ActiveConnections", float64(len(stats.Sockets)), ts),
			c.datum("MessagesSent", float64(sent), ts),
			c.datum("MessagesReceived", float64(received), ts),
		},
	})
	if err != nil {
		logger.Error.Printf("[CloudWatch.Flush] PutMetricData failed: %v", err)
	}
}

func (c *CloudWatch) datum(name string, value float64, ts time.Time) *cloudwatch.MetricDatum {
	return &cloudwatch.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: []*cloudwatch.Dimension{
			{Name: aws.String("Endpoint"), Value: aws.String(c.endpoint)},
		},
		Timestamp: aws.Time(ts),
		Value:     aws.Float64(value),
		Unit:      aws.String(cloudwatch.StandardUnitCount),
	}
}
