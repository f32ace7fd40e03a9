package dynamo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-notify/internal/config"
	"github.com/event-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAPI struct{ mock.Mock }

func (m *mockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}
func (m *mockAPI) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.ScanOutput)
	return out, args.Error(1)
}
func (m *mockAPI) BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.BatchGetItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.BatchWriteItemOutput)
	return out, args.Error(1)
}

// --- helpers ---

func notifItem(t *testing.T, n domain.Notification) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(n)
	require.NoError(t, err)
	return item
}

func idItems(ids ...string) []map[string]types.AttributeValue {
	items := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		items = append(items, strKey(fieldNotificationID, id))
	}
	return items
}

var errCondition = &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}

// --- notifications ---

func TestNotificationRepo_Put_RefusesOverwrite(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return aws.ToString(in.ConditionExpression) == "attribute_not_exists(#pk)" &&
			in.ExpressionAttributeNames["#pk"] == fieldNotificationID
	})).Return(&dynamodb.PutItemOutput{}, nil)

	repo := NewNotificationRepo(api, "notifications")
	require.NoError(t, repo.Put(context.Background(), &domain.Notification{NotificationID: "n1", UserID: "u1"}))
	api.AssertExpectations(t)
}

func TestNotificationRepo_Get_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := NewNotificationRepo(api, "notifications").Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestNotificationRepo_ListByUser_NewestFirstAcrossPages(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			notifItem(t, domain.Notification{NotificationID: "n2", UserID: "u1", CreatedAt: base.Add(2 * time.Second)}),
			notifItem(t, domain.Notification{NotificationID: "n1", UserID: "u1", CreatedAt: base}),
		},
		LastEvaluatedKey: strKey(fieldNotificationID, "n1"),
	}, nil).Once()
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			notifItem(t, domain.Notification{NotificationID: "n3", UserID: "u1", CreatedAt: base.Add(500 * time.Millisecond)}),
		},
	}, nil).Once()

	list, err := NewNotificationRepo(api, "notifications").ListByUser(context.Background(), "u1", nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "n2", list[0].NotificationID)
	assert.Equal(t, "n3", list[1].NotificationID)
	assert.Equal(t, "n1", list[2].NotificationID)
	api.AssertExpectations(t)
}

func TestNotificationRepo_ListByUser_ReadFilter(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		v, ok := in.ExpressionAttributeValues[":r"].(*types.AttributeValueMemberBOOL)
		return aws.ToString(in.FilterExpression) == "#r = :r" &&
			in.ExpressionAttributeNames["#r"] == fieldRead &&
			ok && !v.Value &&
			!aws.ToBool(in.ScanIndexForward)
	})).Return(&dynamodb.QueryOutput{}, nil)

	unread := false
	_, err := NewNotificationRepo(api, "notifications").ListByUser(context.Background(), "u1", &unread)
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func readFlag(id string, read bool) map[string]types.AttributeValue {
	item := strKey(fieldNotificationID, id)
	item[fieldRead] = &types.AttributeValueMemberBOOL{Value: read}
	return item
}

func TestNotificationRepo_CountUnread_SumsPages(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{Items: idItems("n1", "n2", "n3"), LastEvaluatedKey: strKey(fieldNotificationID, "n3")}, nil).Once()
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{Items: idItems("n4", "n5")}, nil).Once()
	api.On("BatchGetItem", mock.Anything, mock.Anything).Return(&dynamodb.BatchGetItemOutput{
		Responses: map[string][]map[string]types.AttributeValue{"notifications": {
			readFlag("n1", false), readFlag("n2", false), readFlag("n3", false), readFlag("n4", false), readFlag("n5", false),
		}},
	}, nil).Once()

	n, err := NewNotificationRepo(api, "notifications").CountUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestNotificationRepo_CountUnread_IgnoresStaleIndex(t *testing.T) {
	api := &mockAPI{}
	// The index still lists n1 and n2 as unread right after they were marked read.
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: idItems("n1", "n2", "n3")}, nil)
	api.On("BatchGetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchGetItemInput) bool {
		ka := in.RequestItems["notifications"]
		return aws.ToBool(ka.ConsistentRead) && len(ka.Keys) == 3
	})).Return(&dynamodb.BatchGetItemOutput{
		Responses: map[string][]map[string]types.AttributeValue{"notifications": {
			readFlag("n1", true), readFlag("n2", true),
		}},
		UnprocessedKeys: map[string]types.KeysAndAttributes{"notifications": {Keys: idItems("n3")}},
	}, nil).Once()
	api.On("BatchGetItem", mock.Anything, mock.Anything).Return(&dynamodb.BatchGetItemOutput{
		Responses: map[string][]map[string]types.AttributeValue{"notifications": {readFlag("n3", false)}},
	}, nil).Once()

	n, err := NewNotificationRepo(api, "notifications").CountUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	api.AssertExpectations(t)
}

func TestNotificationRepo_CountUnread_NothingUnread(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

	n, err := NewNotificationRepo(api, "notifications").CountUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
	api.AssertNotCalled(t, "BatchGetItem", mock.Anything, mock.Anything)
}

func TestNotificationRepo_MarkAsRead_Missing(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errCondition)

	err := NewNotificationRepo(api, "notifications").MarkAsRead(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestNotificationRepo_MarkAllAsRead_CombinesFailures(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: idItems("a", "b", "c")}, nil)
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return in.Key[fieldNotificationID].(*types.AttributeValueMemberS).Value == "b"
	})).Return(nil, errors.New("throttled"))
	api.On("UpdateItem", mock.Anything, mock.Anything).Return(&dynamodb.UpdateItemOutput{}, nil)

	updated, err := NewNotificationRepo(api, "notifications").MarkAllAsRead(context.Background(), "u1")
	assert.Equal(t, 2, updated)
	assert.ErrorContains(t, err, "notification b: throttled")
}

func TestNotificationRepo_MarkAllAsRead_NothingUnread(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

	updated, err := NewNotificationRepo(api, "notifications").MarkAllAsRead(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, updated)
	api.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
}

func TestNotificationRepo_DeleteAllByUser_Batches(t *testing.T) {
	ids := make([]string, 30)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%02d", i)
	}
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: idItems(ids...)}, nil)
	api.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
		return len(in.RequestItems["notifications"]) == 25
	})).Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()
	api.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
		return len(in.RequestItems["notifications"]) == 5
	})).Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()

	deleted, err := NewNotificationRepo(api, "notifications").DeleteAllByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, deleted)
	api.AssertExpectations(t)
}

func TestNotificationRepo_DeleteAllByUser_RetriesUnprocessed(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: idItems("a", "b")}, nil)
	leftover := []types.WriteRequest{{DeleteRequest: &types.DeleteRequest{Key: strKey(fieldNotificationID, "b")}}}
	api.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
		return len(in.RequestItems["notifications"]) == 2
	})).Return(&dynamodb.BatchWriteItemOutput{
		UnprocessedItems: map[string][]types.WriteRequest{"notifications": leftover},
	}, nil).Once()
	api.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
		return len(in.RequestItems["notifications"]) == 1
	})).Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()

	deleted, err := NewNotificationRepo(api, "notifications").DeleteAllByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	api.AssertExpectations(t)
}

// --- users ---

func TestUserRepo_SetPushToken_MissingProfile(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return aws.ToString(in.ConditionExpression) == "attribute_exists(#pk)"
	})).Return(nil, errCondition)

	err := NewUserRepo(api, "users").SetPushToken(context.Background(), "ghost", "tok")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUserRepo_Get_DecodesPreference(t *testing.T) {
	off := false
	tok := "T1"
	item, err := attributevalue.MarshalMap(domain.User{UserID: "u1", Name: "Ann", NotificationsEnabled: &off, PushToken: &tok})
	require.NoError(t, err)
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	u, err := NewUserRepo(api, "users").Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, u.OptedOut())
	assert.Equal(t, "T1", u.Token())
}

// --- audit logs ---

func TestNotificationLogRepo_Append_IsConditional(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		_, hasNotif := in.Item["notification_id"]
		return aws.ToString(in.ConditionExpression) == "attribute_not_exists(#pk)" && !hasNotif
	})).Return(&dynamodb.PutItemOutput{}, nil)

	err := NewNotificationLogRepo(api, "notification_logs").Append(context.Background(), &domain.NotificationLog{
		LogID: "l1", RecipientID: "u1", Status: domain.LogStatusBlocked,
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestNotificationLogRepo_List_SearchAndLimit(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	logs := []domain.NotificationLog{
		{LogID: "l1", SenderName: "System", RecipientName: "Ann", Title: "Selected!", Timestamp: base},
		{LogID: "l2", SenderName: "Org Bob", RecipientName: "Cid", Title: "Reminder", Timestamp: base.Add(time.Minute)},
		{LogID: "l3", SenderName: "System", RecipientName: "Annika", Title: "Waitlist", Timestamp: base.Add(2 * time.Minute)},
	}
	items := make([]map[string]types.AttributeValue, 0, len(logs))
	for _, l := range logs {
		item, err := attributevalue.MarshalMap(l)
		require.NoError(t, err)
		items = append(items, item)
	}
	api := &mockAPI{}
	api.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{Items: items}, nil)

	got, err := NewNotificationLogRepo(api, "notification_logs").List(context.Background(), domain.LogFilter{Query: "ANN", Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "l3", got[0].LogID)
}

func TestNotificationLogRepo_List_ByRecipientUsesIndex(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.IndexName) == indexRecipientLogs &&
			aws.ToString(in.FilterExpression) == "#st = :st"
	})).Return(&dynamodb.QueryOutput{}, nil)

	_, err := NewNotificationLogRepo(api, "notification_logs").List(context.Background(), domain.LogFilter{
		RecipientID: "u1", Status: domain.LogStatusFailed,
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
	api.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}

// --- sessions ---

func TestSessionRepo_Active(t *testing.T) {
	enabled, err := attributevalue.MarshalMap(domain.Session{SessionID: "s1", Enable: true})
	require.NoError(t, err)
	ended, err := attributevalue.MarshalMap(domain.Session{SessionID: "s2"})
	require.NoError(t, err)

	tests := []struct {
		name string
		out  *dynamodb.GetItemOutput
		want bool
	}{
		{"enabled", &dynamodb.GetItemOutput{Item: enabled}, true},
		{"logged out", &dynamodb.GetItemOutput{Item: ended}, false},
		{"missing", &dynamodb.GetItemOutput{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &mockAPI{}
			api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
				return aws.ToBool(in.ConsistentRead)
			})).Return(tc.out, nil)

			active, err := NewSessionRepo(api, "sessions").Active(context.Background(), "s1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, active)
		})
	}
}

func TestSessionRepo_Put_DuplicateIsConflict(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.Anything).Return(nil, errCondition)

	err := NewSessionRepo(api, "sessions").Put(context.Background(), &domain.Session{SessionID: "s1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSessionRepo_Disable_Missing(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errCondition)

	err := NewSessionRepo(api, "sessions").Disable(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- templates ---

func templateItem(t *testing.T, tpl domain.NotificationTemplate) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(tpl)
	require.NoError(t, err)
	return item
}

func TestTemplateRepo_Put_DuplicateIsConflict(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return aws.ToString(in.ConditionExpression) == "attribute_not_exists(#pk)" &&
			in.ExpressionAttributeNames["#pk"] == fieldTemplateID
	})).Return(nil, errCondition)

	err := NewTemplateRepo(api, "notification_templates").Put(context.Background(), &domain.NotificationTemplate{TemplateID: "t1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTemplateRepo_Replace_Missing(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return aws.ToString(in.ConditionExpression) == "attribute_exists(#pk)"
	})).Return(nil, errCondition)

	err := NewTemplateRepo(api, "notification_templates").Replace(context.Background(), &domain.NotificationTemplate{TemplateID: "gone"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateRepo_SetActive_ReturnsUpdated(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return in.ReturnValues == types.ReturnValueAllNew &&
			aws.ToString(in.ConditionExpression) == "attribute_exists(#pk)"
	})).Return(&dynamodb.UpdateItemOutput{
		Attributes: templateItem(t, domain.NotificationTemplate{TemplateID: "t1", Name: "Reminder", Active: false}),
	}, nil)

	tpl, err := NewTemplateRepo(api, "notification_templates").SetActive(context.Background(), "t1", false)
	require.NoError(t, err)
	assert.Equal(t, "t1", tpl.TemplateID)
	assert.False(t, tpl.Active)
}

func TestTemplateRepo_SetActive_Missing(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errCondition)

	_, err := NewTemplateRepo(api, "notification_templates").SetActive(context.Background(), "gone", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateRepo_Delete_Missing(t *testing.T) {
	api := &mockAPI{}
	api.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, errCondition)

	err := NewTemplateRepo(api, "notification_templates").Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateRepo_List_SearchIgnoresCase(t *testing.T) {
	api := &mockAPI{}
	api.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			templateItem(t, domain.NotificationTemplate{TemplateID: "t1", Name: "Lottery win", Type: "selection", Title: "You're in"}),
			templateItem(t, domain.NotificationTemplate{TemplateID: "t2", Name: "Day before", Type: "reminder", Title: "See you tomorrow"}),
			templateItem(t, domain.NotificationTemplate{TemplateID: "t3", Name: "cancelled", Type: "cancellation", Title: "Event off"}),
			templateItem(t, domain.NotificationTemplate{TemplateID: "t4", Name: "Waitlist", Type: "waitlist", Title: "Still waiting"}),
		},
	}, nil)
	repo := NewTemplateRepo(api, "notification_templates")

	byType, err := repo.List(context.Background(), "REMIND")
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "t2", byType[0].TemplateID)

	byTitle, err := repo.List(context.Background(), "event OFF")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "t3", byTitle[0].TemplateID)

	all, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"t3", "t2", "t1", "t4"}, []string{all[0].TemplateID, all[1].TemplateID, all[2].TemplateID, all[3].TemplateID})
}

// --- bootstrap and readiness ---

type mockAdmin struct{ mock.Mock }

func (m *mockAdmin) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.CreateTableOutput)
	return out, args.Error(1)
}

func (m *mockAdmin) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.DescribeTableOutput)
	return out, args.Error(1)
}

var testTables = config.DynamoTables{
	Users:                 "users",
	Sessions:              "sessions",
	Notifications:         "notifications",
	NotificationLogs:      "notification_logs",
	NotificationTemplates: "notification_templates",
}

func TestBootstrap_CreatesEveryTableAndToleratesExisting(t *testing.T) {
	admin := &mockAdmin{}
	var created []string
	admin.On("CreateTable", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = append(created, aws.ToString(args.Get(1).(*dynamodb.CreateTableInput).TableName))
	}).Return(nil, &types.ResourceInUseException{Message: aws.String("exists")})

	Bootstrap(context.Background(), admin, testTables)

	assert.Equal(t, []string{"users", "sessions", "notifications", "notification_logs", "notification_templates"}, created)
}

func TestTableSpecs_IndexAttributesAreDefined(t *testing.T) {
	for _, tbl := range tableSpecs(testTables) {
		in := tbl.input()
		defined := map[string]bool{}
		for _, d := range in.AttributeDefinitions {
			defined[aws.ToString(d.AttributeName)] = true
		}
		for _, idx := range in.GlobalSecondaryIndexes {
			for _, k := range idx.KeySchema {
				assert.True(t, defined[aws.ToString(k.AttributeName)], "%s/%s", tbl.name, aws.ToString(idx.IndexName))
			}
		}
	}
}

func TestHealthCheck_Ready(t *testing.T) {
	active := &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}
	creating := &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusCreating}}

	admin := &mockAdmin{}
	admin.On("DescribeTable", mock.Anything, mock.Anything).Return(active, nil)
	assert.NoError(t, NewHealthCheck(admin, testTables).Ready(context.Background()))

	admin = &mockAdmin{}
	admin.On("DescribeTable", mock.Anything, mock.MatchedBy(func(in *dynamodb.DescribeTableInput) bool {
		return aws.ToString(in.TableName) == "sessions"
	})).Return(creating, nil)
	admin.On("DescribeTable", mock.Anything, mock.Anything).Return(active, nil)
	assert.ErrorIs(t, NewHealthCheck(admin, testTables).Ready(context.Background()), domain.ErrUnavailable)

	admin = &mockAdmin{}
	admin.On("DescribeTable", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	assert.ErrorIs(t, NewHealthCheck(admin, testTables).Ready(context.Background()), domain.ErrUnavailable)
}
