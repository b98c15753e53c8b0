package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (c *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	c.input = params
	if c.err != nil {
		return nil, c.err
	}
	return &sqs.SendMessageOutput{}, nil
}

func TestSQSSenderMarshalsEventWithAttributes(t *testing.T) {
	client := &fakeSQSClient{}
	sender := &awsSQSSender{
		queueURL: "https://sqs.example/q",
		client:   client,
		log:      ensureLogger(nil),
	}

	evt := NewEvent("newsA", "News A", domain.Content{
		ExternalID: "a1",
		Kind:       domain.KindArticle,
		Title:      "Vega rocket returns to flight",
	})
	if err := sender.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if client.input == nil {
		t.Fatalf("expected SendMessage call")
	}
	if aws.ToString(client.input.QueueUrl) != "https://sqs.example/q" {
		t.Fatalf("unexpected queue url: %s", aws.ToString(client.input.QueueUrl))
	}

	var decoded Event
	if err := json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &decoded); err != nil {
		t.Fatalf("message body is not event JSON: %v", err)
	}
	if decoded.Item.ExternalID != "a1" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}

	attrs := client.input.MessageAttributes
	if aws.ToString(attrs["source_id"].StringValue) != "newsA" {
		t.Fatalf("missing source_id attribute")
	}
	if aws.ToString(attrs["kind"].StringValue) != string(domain.KindArticle) {
		t.Fatalf("missing kind attribute")
	}
}

func TestSQSSenderWrapsClientError(t *testing.T) {
	sender := &awsSQSSender{
		queueURL: "https://sqs.example/q",
		client:   &fakeSQSClient{err: fmt.Errorf("throttled")},
		log:      ensureLogger(nil),
	}

	if err := sender.Send(context.Background(), Event{}); err == nil {
		t.Fatalf("expected send error")
	}
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (c *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	c.input = params
	if c.err != nil {
		return nil, c.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestSNSSenderPublishesToTopic(t *testing.T) {
	client := &fakeSNSClient{}
	sender := &awsSNSSender{
		topicARN: "arn:aws:sns:us-east-1:123:content",
		client:   client,
		log:      ensureLogger(nil),
	}

	evt := NewEvent("tube", "Launch Videos", domain.Content{ExternalID: "v1", Kind: domain.KindVideo})
	if err := sender.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if client.input == nil {
		t.Fatalf("expected Publish call")
	}
	if aws.ToString(client.input.TopicArn) != "arn:aws:sns:us-east-1:123:content" {
		t.Fatalf("unexpected topic arn: %s", aws.ToString(client.input.TopicArn))
	}
	if aws.ToString(client.input.MessageAttributes["source_id"].StringValue) != "tube" {
		t.Fatalf("missing source_id attribute")
	}
}

type fakeSender struct {
	sent []Event
	err  error
}

func (s *fakeSender) Send(_ context.Context, evt Event) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, evt)
	return nil
}

func TestQueuePublisherWrapsSenderErrors(t *testing.T) {
	pub := &queuePublisher{
		id:       "archive-queue",
		typ:      TypeQueue,
		provider: QueueProviderAWSSQS,
		sender:   &fakeSender{err: fmt.Errorf("queue unreachable")},
		log:      ensureLogger(nil),
	}

	err := pub.Publish(context.Background(), Event{})
	if err == nil {
		t.Fatalf("expected publish error")
	}
}

func TestNewQueuePublisherRejectsUnknownProvider(t *testing.T) {
	cfg := PublisherConfig{
		ID:    "q1",
		Type:  TypeQueue,
		Queue: &QueueConfig{Provider: "kafka"},
	}
	if _, err := newQueuePublisher(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}
