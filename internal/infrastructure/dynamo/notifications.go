package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-notify/internal/domain"
	"go.uber.org/multierr"
)

// maxBatchRetries bounds resubmission of UnprocessedItems from BatchWriteItem.
const maxBatchRetries = 3

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    API
	tableName string
}

func NewNotificationRepo(client API, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

// Put writes a new notification. The id is assigned by the caller, so the write
// refuses to overwrite an existing item with the same id.
func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldNotificationID},
	})
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldNotificationID, notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByUser returns the user's notifications newest first. A nil read flag
// returns both read and unread items.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, read *bool) ([]domain.Notification, error) {
	input := r.userQuery(userID, read)
	input.ScanIndexForward = aws.Bool(false)

	var notifications []domain.Notification
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		notifications = append(notifications, page...)
	}
	// created_at strings do not sort exactly when fractional seconds are trimmed.
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

// CountUnread counts the user's unread notifications. The index lags table
// writes, so each unread candidate it returns is rechecked against the table
// with a strongly consistent read: a notification already marked read is never
// counted.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	unread := false
	ids, err := r.userIDs(ctx, userID, &unread)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, batch := range chunk(ids, batchGetLimit) {
		n, err := r.countUnreadIn(ctx, batch)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// countUnreadIn reads the read flag of ids from the table and counts the unset
// ones. Deleted notifications are absent from the response and not counted.
func (r *NotificationRepo) countUnreadIn(ctx context.Context, ids []string) (int, error) {
	pending := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, nid := range ids {
		pending = append(pending, strKey(fieldNotificationID, nid))
	}
	count := 0
	for attempt := 0; len(pending) > 0 && attempt <= maxBatchRetries; attempt++ {
		out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.tableName: {
					Keys:                     pending,
					ConsistentRead:           aws.Bool(true),
					ProjectionExpression:     aws.String("#r"),
					ExpressionAttributeNames: map[string]string{"#r": fieldRead},
				},
			},
		})
		if err != nil {
			return 0, fmt.Errorf("recheck unread notifications: %w", err)
		}
		for _, item := range out.Responses[r.tableName] {
			if v, ok := item[fieldRead].(*types.AttributeValueMemberBOOL); !ok || !v.Value {
				count++
			}
		}
		pending = out.UnprocessedKeys[r.tableName].Keys
	}
	if len(pending) > 0 {
		return 0, fmt.Errorf("recheck unread notifications: %d keys unprocessed", len(pending))
	}
	return count, nil
}

func (r *NotificationRepo) MarkAsRead(ctx context.Context, notificationID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldRead: true})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldNotificationID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldNotificationID, notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return mapConditionErr(err, "notification not found")
}

// MarkAllAsRead flags every unread notification of the user as read and returns
// how many were updated. Individual failures are combined into the returned error.
// The user index is eventually consistent, so a record written moments earlier
// may be left for the next call.
func (r *NotificationRepo) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	unread := false
	ids, err := r.userIDs(ctx, userID, &unread)
	if err != nil {
		return 0, err
	}
	var errs error
	updated := 0
	for _, nid := range ids {
		if err := r.MarkAsRead(ctx, nid); err != nil {
			slog.Warn("failed to mark notification as read", "notification_id", nid, "user_id", userID, "err", err)
			errs = multierr.Append(errs, fmt.Errorf("notification %s: %w", nid, err))
			continue
		}
		updated++
	}
	return updated, errs
}

func (r *NotificationRepo) Delete(ctx context.Context, notificationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldNotificationID, notificationID),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldNotificationID},
	})
	return mapConditionErr(err, "notification not found")
}

// DeleteAllByUser removes every notification of the user in batches of 25 and
// returns how many were deleted.
func (r *NotificationRepo) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	ids, err := r.userIDs(ctx, userID, nil)
	if err != nil {
		return 0, err
	}
	var errs error
	deleted := 0
	for _, batch := range chunk(ids, batchWriteLimit) {
		reqs := make([]types.WriteRequest, 0, len(batch))
		for _, nid := range batch {
			reqs = append(reqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: strKey(fieldNotificationID, nid)},
			})
		}
		left, err := r.batchWrite(ctx, reqs)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		deleted += len(batch) - left
	}
	return deleted, errs
}

// batchWrite submits reqs and resubmits unprocessed items. It returns the
// number of requests that were never processed.
func (r *NotificationRepo) batchWrite(ctx context.Context, reqs []types.WriteRequest) (int, error) {
	pending := reqs
	for attempt := 0; len(pending) > 0 && attempt <= maxBatchRetries; attempt++ {
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.tableName: pending},
		})
		if err != nil {
			return len(pending), fmt.Errorf("batch delete notifications: %w", err)
		}
		pending = out.UnprocessedItems[r.tableName]
	}
	if len(pending) > 0 {
		return len(pending), fmt.Errorf("batch delete notifications: %d items unprocessed", len(pending))
	}
	return 0, nil
}

// userIDs returns the notification ids of a user, optionally filtered by read flag.
func (r *NotificationRepo) userIDs(ctx context.Context, userID string, read *bool) ([]string, error) {
	input := r.userQuery(userID, read)
	input.ProjectionExpression = aws.String("#id")
	input.ExpressionAttributeNames["#id"] = fieldNotificationID

	var ids []string
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			if v, ok := item[fieldNotificationID].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
	}
	return ids, nil
}

func (r *NotificationRepo) userQuery(userID string, read *bool) *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexUserNotifications),
		KeyConditionExpression:   aws.String("#uid = :uid"),
		ExpressionAttributeNames: map[string]string{"#uid": fieldUserID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	}
	if read != nil {
		// "read" is a DynamoDB reserved word.
		input.FilterExpression = aws.String("#r = :r")
		input.ExpressionAttributeNames["#r"] = fieldRead
		input.ExpressionAttributeValues[":r"] = &types.AttributeValueMemberBOOL{Value: *read}
	}
	return input
}
