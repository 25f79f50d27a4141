package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSPublisherPublishSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn:aws:sns:us-east-1:123:widgets",
		client:   client,
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), NewEvent("PUT", "widgets", "https://api.test/widgets/5", 200, nil)); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:us-east-1:123:widgets" {
		t.Fatalf("TopicArn = %s", got)
	}
	if attr := client.input.MessageAttributes["verb"]; aws.ToString(attr.StringValue) != "PUT" {
		t.Fatalf("verb attribute = %#v", attr)
	}
	if msg := aws.ToString(client.input.Message); !strings.Contains(msg, `"url":"https://api.test/widgets/5"`) {
		t.Fatalf("Message missing url: %s", msg)
	}
}

func TestSNSPublisherPublishError(t *testing.T) {
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn",
		client:   &fakeSNSClient{err: errors.New("denied")},
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), Event{Resource: "widgets"}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}
