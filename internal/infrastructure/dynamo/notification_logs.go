package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-notify/internal/domain"
)

// NotificationLogRepo is the append-only audit store. It exposes no update or
// delete operations.
type NotificationLogRepo struct {
	client    API
	tableName string
}

func NewNotificationLogRepo(client API, tableName string) *NotificationLogRepo {
	return &NotificationLogRepo{client: client, tableName: tableName}
}

// Append writes a new audit entry; an existing log id is never overwritten.
func (r *NotificationLogRepo) Append(ctx context.Context, l *domain.NotificationLog) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal notification log: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldLogID},
	})
	return err
}

// List returns audit entries newest first. A recipient filter uses the
// recipient index; otherwise the table is scanned.
func (r *NotificationLogRepo) List(ctx context.Context, f domain.LogFilter) ([]domain.NotificationLog, error) {
	var (
		logs []domain.NotificationLog
		err  error
	)
	if f.RecipientID != "" {
		logs, err = r.queryRecipient(ctx, f)
	} else {
		logs, err = r.scan(ctx, f)
	}
	if err != nil {
		return nil, err
	}
	if f.Query != "" {
		logs = matchQuery(logs, f.Query)
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	if f.Limit > 0 && len(logs) > f.Limit {
		logs = logs[:f.Limit]
	}
	return logs, nil
}

func (r *NotificationLogRepo) queryRecipient(ctx context.Context, f domain.LogFilter) ([]domain.NotificationLog, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexRecipientLogs),
		KeyConditionExpression:   aws.String("#rid = :rid"),
		ScanIndexForward:         aws.Bool(false),
		ExpressionAttributeNames: map[string]string{"#rid": fieldRecipientID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: f.RecipientID},
		},
	}
	if f.Status != "" {
		input.FilterExpression = aws.String("#st = :st")
		input.ExpressionAttributeNames["#st"] = "status"
		input.ExpressionAttributeValues[":st"] = &types.AttributeValueMemberS{Value: f.Status}
	}

	var logs []domain.NotificationLog
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.NotificationLog
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		logs = append(logs, page...)
	}
	return logs, nil
}

func (r *NotificationLogRepo) scan(ctx context.Context, f domain.LogFilter) ([]domain.NotificationLog, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	if f.Status != "" {
		input.FilterExpression = aws.String("#st = :st")
		input.ExpressionAttributeNames = map[string]string{"#st": "status"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":st": &types.AttributeValueMemberS{Value: f.Status},
		}
	}

	var logs []domain.NotificationLog
	p := dynamodb.NewScanPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.NotificationLog
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		logs = append(logs, page...)
	}
	return logs, nil
}

// matchQuery keeps entries whose sender name, recipient name or title contains q.
func matchQuery(logs []domain.NotificationLog, q string) []domain.NotificationLog {
	q = strings.ToLower(q)
	out := logs[:0]
	for _, l := range logs {
		if strings.Contains(strings.ToLower(l.SenderName), q) ||
			strings.Contains(strings.ToLower(l.RecipientName), q) ||
			strings.Contains(strings.ToLower(l.Title), q) {
			out = append(out, l)
		}
	}
	return out
}
