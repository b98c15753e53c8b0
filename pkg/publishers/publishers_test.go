package publishers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

func writePublishersFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", `
publishers:
  - id: cms-webhook
    type: http
    http:
      url: https://cms.example/hooks/content
      headers:
        Authorization: Bearer token
  - id: archive-queue
    type: queue
    enabled: false
    queue:
      provider: aws_sqs
      aws:
        uri: https://sqs.us-east-1.amazonaws.com/123/content
        region: us-east-1
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 publishers, got %d", len(reg.All()))
	}

	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "cms-webhook" {
		t.Fatalf("expected only cms-webhook enabled, got %+v", enabled)
	}

	hook, ok := reg.ByID("cms-webhook")
	if !ok || hook.HTTP == nil {
		t.Fatalf("expected cms-webhook with http config")
	}
	if hook.HTTP.Method != "POST" {
		t.Fatalf("expected method defaulted to POST, got %q", hook.HTTP.Method)
	}
	if hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", hook.HTTP.TimeoutSeconds)
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing id", `
publishers:
  - type: http
    http:
      url: https://x.example
`},
		{"http without url", `
publishers:
  - id: p1
    type: http
    http:
      method: POST
`},
		{"unknown queue provider", `
publishers:
  - id: p1
    type: queue
    queue:
      provider: kafka
`},
		{"sqs without region", `
publishers:
  - id: p1
    type: queue
    queue:
      provider: aws_sqs
      aws:
        uri: https://sqs.example/q
`},
		{"duplicate ids", `
publishers:
  - id: p1
    type: http
    http:
      url: https://a.example
  - id: p1
    type: http
    http:
      url: https://b.example
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writePublishersFile(t, "publishers.yaml", tc.content)
			if _, err := LoadRegistry(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRegistrySurfacesDecodeError(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", `
publishers:
  - id: [broken
`)

	_, err := LoadRegistry(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "yaml") {
		t.Fatalf("expected decoder detail in error, got %v", err)
	}
}

type recordingPublisher struct {
	id  string
	err error

	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) ID() string   { return p.id }
func (p *recordingPublisher) Type() string { return "test" }
func (p *recordingPublisher) Publish(_ context.Context, evt Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func TestFanoutDeliversPastFailures(t *testing.T) {
	ok1 := &recordingPublisher{id: "ok1"}
	bad := &recordingPublisher{id: "bad", err: fmt.Errorf("sink down")}
	ok2 := &recordingPublisher{id: "ok2"}

	fanout := NewFanout([]Publisher{ok1, bad, ok2})
	if fanout.Size() != 3 {
		t.Fatalf("expected 3 publishers, got %d", fanout.Size())
	}

	evt := NewEvent("newsA", "News A", domain.Content{
		ExternalID: "a1",
		Kind:       domain.KindArticle,
		Title:      "Launch scrubbed",
	})

	n, err := fanout.Publish(context.Background(), evt)
	if n != 2 {
		t.Fatalf("expected 2 successful deliveries, got %d", n)
	}
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected joined error naming the failed sink, got %v", err)
	}
	if len(ok1.events) != 1 || len(ok2.events) != 1 {
		t.Fatalf("expected both healthy sinks to receive the event")
	}
	if ok1.events[0].Kind != domain.KindArticle || ok1.events[0].SourceID != "newsA" {
		t.Fatalf("unexpected event payload: %+v", ok1.events[0])
	}
}

func TestFanoutSkipsNilPublishers(t *testing.T) {
	fanout := NewFanout([]Publisher{nil, &recordingPublisher{id: "ok"}})
	if fanout.Size() != 1 {
		t.Fatalf("expected nil publishers dropped, size=%d", fanout.Size())
	}
}

func TestBuildAllFailsOnUnknownType(t *testing.T) {
	reg := DefaultRegistry()
	cfgs := []PublisherConfig{{ID: "p1", Type: "smoke-signal"}}

	if _, err := BuildAll(context.Background(), reg, cfgs, nil); err == nil {
		t.Fatalf("expected unknown publisher type error")
	}
}

func TestRegistryCustomBuilder(t *testing.T) {
	rec := &recordingPublisher{id: "custom"}
	reg := NewRegistry(map[string]Builder{
		"custom": func(context.Context, PublisherConfig, Logger) (Publisher, error) {
			return rec, nil
		},
	})

	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{{ID: "c1", Type: "custom"}}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].ID() != "custom" {
		t.Fatalf("expected custom publisher built, got %+v", pubs)
	}
}
