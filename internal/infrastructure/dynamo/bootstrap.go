package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-notify/internal/config"
	"github.com/event-notify/internal/domain"
)

// TableAdmin is the control-plane subset of the DynamoDB client used to create
// tables and check their status.
type TableAdmin interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// tableSpec describes one table: its hash key, the string attributes its
// indexes are keyed on, and the indexes themselves.
type tableSpec struct {
	name    string
	hashKey string
	attrs   []string
	indexes []types.GlobalSecondaryIndex
}

func tableSpecs(tables config.DynamoTables) []tableSpec {
	return []tableSpec{
		{
			name:    tables.Users,
			hashKey: fieldUserID,
			attrs:   []string{fieldUsername, fieldEmail},
			indexes: []types.GlobalSecondaryIndex{gsi(indexUsername, fieldUsername, ""), gsi(indexEmail, fieldEmail, "")},
		},
		{
			name:    tables.Sessions,
			hashKey: fieldSessionID,
			attrs:   []string{fieldUserID},
			indexes: []types.GlobalSecondaryIndex{gsi(indexUserSessions, fieldUserID, "")},
		},
		{
			name:    tables.Notifications,
			hashKey: fieldNotificationID,
			attrs:   []string{fieldUserID, fieldCreatedAt},
			indexes: []types.GlobalSecondaryIndex{gsi(indexUserNotifications, fieldUserID, fieldCreatedAt)},
		},
		{
			name:    tables.NotificationLogs,
			hashKey: fieldLogID,
			attrs:   []string{fieldRecipientID, fieldTimestamp},
			indexes: []types.GlobalSecondaryIndex{gsi(indexRecipientLogs, fieldRecipientID, fieldTimestamp)},
		},
		{
			name:    tables.NotificationTemplates,
			hashKey: fieldTemplateID,
		},
	}
}

func (s tableSpec) input() *dynamodb.CreateTableInput {
	defs := []types.AttributeDefinition{{AttributeName: aws.String(s.hashKey), AttributeType: types.ScalarAttributeTypeS}}
	for _, a := range s.attrs {
		defs = append(defs, types.AttributeDefinition{AttributeName: aws.String(a), AttributeType: types.ScalarAttributeTypeS})
	}
	return &dynamodb.CreateTableInput{
		TableName:              aws.String(s.name),
		BillingMode:            types.BillingModePayPerRequest,
		AttributeDefinitions:   defs,
		KeySchema:              []types.KeySchemaElement{{AttributeName: aws.String(s.hashKey), KeyType: types.KeyTypeHash}},
		GlobalSecondaryIndexes: s.indexes,
	}
}

// Bootstrap creates the user, session, notification, audit log and template
// tables with their indexes. Tables that already exist are left alone, so it
// runs on every startup. Failures are logged; Ready reports them later.
func Bootstrap(ctx context.Context, client TableAdmin, tables config.DynamoTables) {
	for _, tbl := range tableSpecs(tables) {
		_, err := client.CreateTable(ctx, tbl.input())
		var inUse *types.ResourceInUseException
		switch {
		case err == nil:
			slog.Info("created table", "table", tbl.name)
		case errors.As(err, &inUse):
		default:
			slog.Warn("could not create table", "table", tbl.name, "err", err)
		}
	}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

// HealthCheck checks the tables the service depends on.
type HealthCheck struct {
	client TableAdmin
	tables []string
}

func NewHealthCheck(client TableAdmin, tables config.DynamoTables) *HealthCheck {
	return &HealthCheck{
		client: client,
		tables: []string{tables.Users, tables.Sessions, tables.Notifications, tables.NotificationLogs, tables.NotificationTemplates},
	}
}

// Ready returns an error wrapping domain.ErrUnavailable unless every table is ACTIVE.
func (h *HealthCheck) Ready(ctx context.Context) error {
	for _, name := range h.tables {
		out, err := h.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
		if err != nil {
			return fmt.Errorf("describe table %s: %w: %v", name, domain.ErrUnavailable, err)
		}
		if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
			return fmt.Errorf("table %s not active: %w", name, domain.ErrUnavailable)
		}
	}
	return nil
}
