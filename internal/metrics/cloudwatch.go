package metrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Namespace groups all pipeline measurements in CloudWatch.
const Namespace = "RAG/Application"

// Measurement units accepted by Publish.
const (
	UnitCount   = "Count"
	UnitSeconds = "Seconds"
)

// CloudWatchAPI is the subset of the CloudWatch client used by the publisher.
type CloudWatchAPI interface {
	PutMetricData(
		ctx context.Context, params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPublisher emits named measurements tagged with the deployment
// environment. Publishing is best-effort: a metrics outage must never fail
// a user-facing query, so errors are logged and swallowed.
type CloudWatchPublisher struct {
	client      CloudWatchAPI
	environment string
	logger      *zap.Logger
}

// NewCloudWatchPublisher creates a metrics publisher.
func NewCloudWatchPublisher(client CloudWatchAPI, environment string, logger *zap.Logger) *CloudWatchPublisher {
	return &CloudWatchPublisher{client: client, environment: environment, logger: logger}
}

// Publish emits a single measurement. Never returns an error.
func (p *CloudWatchPublisher) Publish(ctx context.Context, name string, value float64, unit string) {
	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(Namespace),
		MetricData: []types.MetricDatum{{
			MetricName: aws.String(name),
			Value:      aws.Float64(value),
			Unit:       types.StandardUnit(unit),
			Dimensions: []types.Dimension{{
				Name:  aws.String("Environment"),
				Value: aws.String(p.environment),
			}},
		}},
	})
	if err != nil {
		p.logger.Warn("publish metric",
			zap.String("metric", name),
			zap.Float64("value", value),
			zap.Error(err),
		)
	}
}
