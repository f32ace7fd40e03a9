package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/event-notify/internal/config"
	"github.com/event-notify/internal/domain"
	"github.com/event-notify/internal/infrastructure/dynamo"
)

// snsAPI is the subset of the SNS client used for mobile push.
type snsAPI interface {
	CreatePlatformEndpoint(ctx context.Context, in *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Relay delivers push messages through AWS SNS mobile push. Device tokens are
// registered as platform endpoints on first use.
type Relay struct {
	client         snsAPI
	applicationARN string

	mu        sync.Mutex
	endpoints map[string]string // device token -> endpoint ARN
}

func NewRelay(cfg *config.Config) (*Relay, error) {
	if cfg.SNSPlatformApplicationARN == "" {
		return nil, errors.New("SNS_PLATFORM_APPLICATION_ARN is not set")
	}
	awsCfg, err := dynamo.LoadAWSConfig(context.Background(), cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	return newRelay(sns.NewFromConfig(awsCfg), cfg.SNSPlatformApplicationARN), nil
}

func newRelay(client snsAPI, applicationARN string) *Relay {
	return &Relay{client: client, applicationARN: applicationARN, endpoints: make(map[string]string)}
}

func (r *Relay) Send(ctx context.Context, msg domain.PushMessage) error {
	endpointARN, err := r.endpoint(ctx, msg.Token)
	if err != nil {
		return err
	}
	body, err := messageJSON(msg)
	if err != nil {
		return err
	}
	_, err = r.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(endpointARN),
		Message:          aws.String(body),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// endpoint returns the platform endpoint for token. CreatePlatformEndpoint is
// idempotent for an existing token, so a cache miss is always safe.
func (r *Relay) endpoint(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	arn, ok := r.endpoints[token]
	r.mu.Unlock()
	if ok {
		return arn, nil
	}
	out, err := r.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(r.applicationARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return "", fmt.Errorf("sns create platform endpoint: %w", err)
	}
	arn = aws.ToString(out.EndpointArn)
	r.mu.Lock()
	r.endpoints[token] = arn
	r.mu.Unlock()
	return arn, nil
}

// messageJSON builds the per-platform envelope SNS expects with MessageStructure=json.
func messageJSON(msg domain.PushMessage) (string, error) {
	data := map[string]string{
		"title":   msg.Title,
		"message": msg.Message,
		"eventId": msg.EventID,
	}
	gcm, err := json.Marshal(map[string]interface{}{
		"notification": map[string]string{"title": msg.Title, "body": msg.Message},
		"data":         data,
	})
	if err != nil {
		return "", err
	}
	apns, err := json.Marshal(map[string]interface{}{
		"aps":     map[string]interface{}{"alert": map[string]string{"title": msg.Title, "body": msg.Message}, "sound": "default"},
		"eventId": msg.EventID,
	})
	if err != nil {
		return "", err
	}
	envelope, err := json.Marshal(map[string]string{
		"default":      msg.Message,
		"GCM":          string(gcm),
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
	})
	if err != nil {
		return "", err
	}
	return string(envelope), nil
}
