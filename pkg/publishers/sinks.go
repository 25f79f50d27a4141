package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported sink types.
const (
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
	TypeHTTP   = "http"
)

const (
	defaultHTTPMethod  = "POST"
	defaultHTTPTimeout = 5
)

// SinkConfig is one entry of the sinks file. Exactly the block matching Type
// is consulted.
type SinkConfig struct {
	ID      string `json:"id" yaml:"id"`
	Type    string `json:"type" yaml:"type"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
	// Resources limits the sink to writes against these resources. Empty means all.
	Resources []string    `json:"resources" yaml:"resources"`
	SQS       *SQSSink    `json:"sqs" yaml:"sqs"`
	SNS       *SNSSink    `json:"sns" yaml:"sns"`
	PubSub    *PubSubSink `json:"pubsub" yaml:"pubsub"`
	HTTP      *HTTPSink   `json:"http" yaml:"http"`
}

// AWSCredentials optionally pins static credentials instead of the default chain.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// SQSSink delivers events to an SQS queue.
type SQSSink struct {
	QueueURL       string `json:"uri" yaml:"uri"`
	Region         string `json:"region" yaml:"region"`
	AWSCredentials `json:",inline" yaml:",inline"`
}

// SNSSink delivers events to an SNS topic.
type SNSSink struct {
	TopicARN       string `json:"topic_arn" yaml:"topic_arn"`
	Region         string `json:"region" yaml:"region"`
	AWSCredentials `json:",inline" yaml:",inline"`
}

// PubSubSink delivers events to a Google Cloud Pub/Sub topic.
type PubSubSink struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	Topic     string `json:"topic" yaml:"topic"`
}

// HTTPSink delivers events as JSON to a webhook.
type HTTPSink struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// sinkSettings is implemented by every per-type block.
type sinkSettings interface {
	normalize()
	validate() error
}

func (s *SQSSink) normalize() {
	s.QueueURL = strings.TrimSpace(s.QueueURL)
	s.Region = strings.TrimSpace(s.Region)
	s.AWSCredentials.normalize()
}

func (s *SQSSink) validate() error {
	switch {
	case s.QueueURL == "":
		return errors.New("sqs.uri is required")
	case s.Region == "":
		return errors.New("sqs.region is required")
	}
	return nil
}

func (s *SNSSink) normalize() {
	s.TopicARN = strings.TrimSpace(s.TopicARN)
	s.Region = strings.TrimSpace(s.Region)
	s.AWSCredentials.normalize()
}

func (s *SNSSink) validate() error {
	switch {
	case s.TopicARN == "":
		return errors.New("sns.topic_arn is required")
	case s.Region == "":
		return errors.New("sns.region is required")
	}
	return nil
}

func (s *PubSubSink) normalize() {
	s.ProjectID = strings.TrimSpace(s.ProjectID)
	s.Topic = strings.TrimSpace(s.Topic)
}

func (s *PubSubSink) validate() error {
	if s.ProjectID == "" || s.Topic == "" {
		return errors.New("pubsub.project_id and pubsub.topic are required")
	}
	return nil
}

func (s *HTTPSink) normalize() {
	s.URL = strings.TrimSpace(s.URL)
	if s.Method = strings.ToUpper(strings.TrimSpace(s.Method)); s.Method == "" {
		s.Method = defaultHTTPMethod
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = defaultHTTPTimeout
	}
	headers := make(map[string]string, len(s.Headers))
	for k, v := range s.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	s.Headers = nil
	if len(headers) > 0 {
		s.Headers = headers
	}
}

func (s *HTTPSink) validate() error {
	if s.URL == "" {
		return errors.New("http.url is required")
	}
	return nil
}

func (c *AWSCredentials) normalize() {
	c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
	c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
}

// settings returns the block selected by Type. A missing block yields a nil
// interface; an unknown type yields ok=false.
func (cfg *SinkConfig) settings() (s sinkSettings, ok bool) {
	switch cfg.Type {
	case TypeSQS:
		if cfg.SQS != nil {
			return cfg.SQS, true
		}
	case TypeSNS:
		if cfg.SNS != nil {
			return cfg.SNS, true
		}
	case TypePubSub:
		if cfg.PubSub != nil {
			return cfg.PubSub, true
		}
	case TypeHTTP:
		if cfg.HTTP != nil {
			return cfg.HTTP, true
		}
	default:
		return nil, false
	}
	return nil, true
}

// normalize trims identifiers, lowercases the type and normalizes the block in
// use. Blocks are copied so the caller's pointers are left alone.
func (cfg SinkConfig) normalize() SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.SQS != nil {
		c := *cfg.SQS
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		cfg.PubSub = &c
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		cfg.HTTP = &c
	}
	if s, ok := cfg.settings(); ok && s != nil {
		s.normalize()
	}
	return cfg
}

func (cfg SinkConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("sink %q: type is required", cfg.ID)
	}
	s, ok := cfg.settings()
	if !ok {
		return fmt.Errorf("sink %q: unsupported type %q", cfg.ID, cfg.Type)
	}
	if s == nil {
		return fmt.Errorf("sink %q: %s block is required", cfg.ID, cfg.Type)
	}
	if err := s.validate(); err != nil {
		return fmt.Errorf("sink %q: %w", cfg.ID, err)
	}
	return nil
}

// IsEnabled reports the enabled flag; sinks are enabled unless switched off.
func (cfg SinkConfig) IsEnabled() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// SinkSet is the validated content of a sinks file.
type SinkSet struct {
	sinks []SinkConfig
	byID  map[string]int
}

// NewSinkSet normalizes and validates cfgs. Ids must be unique.
func NewSinkSet(cfgs []SinkConfig) (*SinkSet, error) {
	set := &SinkSet{
		sinks: make([]SinkConfig, 0, len(cfgs)),
		byID:  make(map[string]int, len(cfgs)),
	}
	for i, raw := range cfgs {
		cfg := raw.normalize()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, dup := set.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate sink id %q", cfg.ID)
		}
		set.byID[cfg.ID] = len(set.sinks)
		set.sinks = append(set.sinks, cfg)
	}
	return set, nil
}

// LoadSinks reads a YAML or JSON sinks file. The decoder follows the file
// extension; files without a known extension are tried as YAML, then JSON.
func LoadSinks(path string) (*SinkSet, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sinks file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}

	var doc struct {
		Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	default:
		if err = yaml.Unmarshal(raw, &doc); err != nil {
			err = json.Unmarshal(raw, &doc)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode sinks file %s: %w", filepath.Base(path), err)
	}
	return NewSinkSet(doc.Sinks)
}

// ByID returns the sink with the given id.
func (s *SinkSet) ByID(id string) (SinkConfig, bool) {
	if s == nil {
		return SinkConfig{}, false
	}
	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return SinkConfig{}, false
	}
	return s.sinks[i], true
}

// All returns every sink in file order.
func (s *SinkSet) All() []SinkConfig {
	if s == nil {
		return nil
	}
	return append([]SinkConfig(nil), s.sinks...)
}

// Enabled returns the sinks that are switched on, in file order.
func (s *SinkSet) Enabled() []SinkConfig {
	var out []SinkConfig
	for _, cfg := range s.All() {
		if cfg.IsEnabled() {
			out = append(out, cfg)
		}
	}
	return out
}
