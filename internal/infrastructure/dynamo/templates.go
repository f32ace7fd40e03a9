package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-notify/internal/domain"
)

// TemplateRepo stores admin-managed notification templates. The table is small
// enough that listing scans it.
type TemplateRepo struct {
	client    API
	tableName string
}

func NewTemplateRepo(client API, tableName string) *TemplateRepo {
	return &TemplateRepo{client: client, tableName: tableName}
}

// Put creates a template; an existing template id is a conflict.
func (r *TemplateRepo) Put(ctx context.Context, t *domain.NotificationTemplate) error {
	err := r.put(ctx, t, "attribute_not_exists(#pk)")
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("template %s exists: %w", t.TemplateID, domain.ErrConflict)
	}
	return err
}

// Replace overwrites an existing template.
func (r *TemplateRepo) Replace(ctx context.Context, t *domain.NotificationTemplate) error {
	return mapConditionErr(r.put(ctx, t, "attribute_exists(#pk)"), "template not found")
}

func (r *TemplateRepo) put(ctx context.Context, t *domain.NotificationTemplate, cond string) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String(cond),
		ExpressionAttributeNames: map[string]string{"#pk": fieldTemplateID},
	})
	return err
}

func (r *TemplateRepo) Get(ctx context.Context, templateID string) (*domain.NotificationTemplate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldTemplateID, templateID),
	})
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", templateID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("template %s: %w", templateID, domain.ErrNotFound)
	}
	var t domain.NotificationTemplate
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SetActive flips the active flag and returns the updated template.
func (r *TemplateRepo) SetActive(ctx context.Context, templateID string, active bool) (*domain.NotificationTemplate, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldActive:    active,
		fieldUpdatedAt: nowString(),
	})
	if err != nil {
		return nil, err
	}
	ue.Names["#pk"] = fieldTemplateID
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldTemplateID, templateID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, mapConditionErr(err, "template not found")
	}
	var t domain.NotificationTemplate
	if err := attributevalue.UnmarshalMap(out.Attributes, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepo) Delete(ctx context.Context, templateID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldTemplateID, templateID),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldTemplateID},
	})
	return mapConditionErr(err, "template not found")
}

// List returns templates ordered by name. A non-empty q keeps templates whose
// name, type or title contains it, ignoring case.
func (r *TemplateRepo) List(ctx context.Context, q string) ([]domain.NotificationTemplate, error) {
	var templates []domain.NotificationTemplate
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.NotificationTemplate
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		templates = append(templates, page...)
	}
	if q != "" {
		templates = matchTemplates(templates, q)
	}
	sort.SliceStable(templates, func(i, j int) bool {
		return strings.ToLower(templates[i].Name) < strings.ToLower(templates[j].Name)
	})
	return templates, nil
}

func matchTemplates(templates []domain.NotificationTemplate, q string) []domain.NotificationTemplate {
	q = strings.ToLower(q)
	out := templates[:0]
	for _, t := range templates {
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Type), q) ||
			strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t)
		}
	}
	return out
}
