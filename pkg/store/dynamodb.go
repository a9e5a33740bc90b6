package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"

	"kanladin-backend/pkg/apperrors"
)

// maxTransactItems is the TransactWriteItems limit
const maxTransactItems = 100

// DynamoDBAPI is the subset of the DynamoDB client the gateway uses
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoDBGateway stores each table as a DynamoDB table keyed by "id".
// Query is a filtered scan: there are no secondary indexes.
type DynamoDBGateway struct {
	client DynamoDBAPI
	names  map[Table]string
}

func NewDynamoDBGateway(client DynamoDBAPI, names map[Table]string) *DynamoDBGateway {
	resolved := make(map[Table]string, len(Tables))
	for _, t := range Tables {
		resolved[t] = string(t)
		if n, ok := names[t]; ok && n != "" {
			resolved[t] = n
		}
	}
	return &DynamoDBGateway{client: client, names: resolved}
}

// EnsureTables creates any missing table and waits for it to become active
func (g *DynamoDBGateway) EnsureTables(ctx context.Context, waiter func(ctx context.Context, table string) error) error {
	for _, t := range Tables {
		name := g.names[t]
		_, err := g.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
		if err == nil {
			log.WithField("table", name).Info("table already exists")
			continue
		}
		var rnf *types.ResourceNotFoundException
		if !errors.As(err, &rnf) {
			return g.fault("check_table_exists", t, err)
		}

		log.WithField("table", name).Info("creating table")
		_, err = g.client.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(name),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(KeyAttr), KeyType: types.KeyTypeHash},
			},
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(KeyAttr), AttributeType: types.ScalarAttributeTypeS},
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(5),
				WriteCapacityUnits: aws.Int64(5),
			},
		})
		if err != nil {
			return g.fault("create_table", t, err)
		}
		if waiter != nil {
			if err := waiter(ctx, name); err != nil {
				return g.fault("create_table", t, err)
			}
		}
		log.WithField("table", name).Info("table created")
	}
	return nil
}

// TableExistsWaiter waits on the SDK's table-exists waiter
func TableExistsWaiter(client *dynamodb.Client, maxWait time.Duration) func(ctx context.Context, table string) error {
	w := dynamodb.NewTableExistsWaiter(client)
	return func(ctx context.Context, table string) error {
		return w.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, maxWait)
	}
}

func (g *DynamoDBGateway) Get(ctx context.Context, table Table, id string) (Item, error) {
	out, err := g.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(g.names[table]),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, g.fault("get_item", table, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return decode(out.Item)
}

func (g *DynamoDBGateway) Put(ctx context.Context, table Table, item Item, cond *Condition) error {
	av, err := attributevalue.MarshalMap(map[string]any(item))
	if err != nil {
		return g.fault("put_item", table, err)
	}
	expr, names, values, err := conditionExpression(cond, false)
	if err != nil {
		return g.fault("put_item", table, err)
	}

	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(g.names[table]),
		Item:                      av,
		ConditionExpression:       expr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if isConditionalCheckFailed(err) {
		return ErrConditionFailed
	}
	if err != nil {
		return g.fault("put_item", table, err)
	}
	return nil
}

func (g *DynamoDBGateway) Delete(ctx context.Context, table Table, id string, cond *Condition) error {
	expr, names, values, err := conditionExpression(cond, true)
	if err != nil {
		return g.fault("delete_item", table, err)
	}

	_, err = g.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(g.names[table]),
		Key:                       keyOf(id),
		ConditionExpression:       expr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if isConditionalCheckFailed(err) {
		if cond == nil || len(cond.Equals) == 0 {
			return ErrNotFound
		}
		return ErrConditionFailed
	}
	if err != nil {
		return g.fault("delete_item", table, err)
	}
	return nil
}

func (g *DynamoDBGateway) Scan(ctx context.Context, table Table) ([]Item, error) {
	return g.scan(ctx, "scan", table, &dynamodb.ScanInput{TableName: aws.String(g.names[table])})
}

func (g *DynamoDBGateway) Query(ctx context.Context, table Table, attr string, value any) ([]Item, error) {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return nil, g.fault("query", table, err)
	}
	return g.scan(ctx, "query", table, &dynamodb.ScanInput{
		TableName:                 aws.String(g.names[table]),
		FilterExpression:          aws.String("#f = :f"),
		ExpressionAttributeNames:  map[string]string{"#f": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":f": av},
		ConsistentRead:            aws.Bool(true),
	})
}

func (g *DynamoDBGateway) Transact(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > maxTransactItems {
		log.WithFields(log.Fields{
			"component": "store.dynamodb",
			"writes":    len(ops),
			"limit":     maxTransactItems,
		}).Warn("transaction rejected before sending")
		return fmt.Errorf("%w: %d writes, limit %d", ErrTooManyWrites, len(ops), maxTransactItems)
	}

	items := make([]types.TransactWriteItem, 0, len(ops))
	for _, op := range ops {
		name := aws.String(g.names[op.Table])
		switch op.Kind {
		case OpPut:
			av, err := attributevalue.MarshalMap(map[string]any(op.Item))
			if err != nil {
				return g.fault("transact_write_items", op.Table, err)
			}
			expr, names, values, err := conditionExpression(op.Condition, false)
			if err != nil {
				return g.fault("transact_write_items", op.Table, err)
			}
			items = append(items, types.TransactWriteItem{Put: &types.Put{
				TableName:                 name,
				Item:                      av,
				ConditionExpression:       expr,
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			}})
		case OpDelete:
			expr, names, values, err := conditionExpression(op.Condition, true)
			if err != nil {
				return g.fault("transact_write_items", op.Table, err)
			}
			items = append(items, types.TransactWriteItem{Delete: &types.Delete{
				TableName:                 name,
				Key:                       keyOf(op.ID),
				ConditionExpression:       expr,
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			}})
		}
	}

	_, err := g.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err == nil {
		return nil
	}
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return ErrConditionFailed
			}
		}
	}
	return g.fault("transact_write_items", "", err)
}

func (g *DynamoDBGateway) Close() error {
	return nil
}

func (g *DynamoDBGateway) scan(ctx context.Context, op string, table Table, input *dynamodb.ScanInput) ([]Item, error) {
	var items []Item
	for {
		out, err := g.client.Scan(ctx, input)
		if err != nil {
			return nil, g.fault(op, table, err)
		}
		for _, raw := range out.Items {
			item, err := decode(raw)
			if err != nil {
				return nil, g.fault(op, table, err)
			}
			items = append(items, item)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}

func (g *DynamoDBGateway) fault(op string, table Table, err error) error {
	log.WithFields(log.Fields{
		"component": "store.dynamodb",
		"operation": op,
		"table":     g.names[table],
	}).Errorf("database operation failed: %v", err)
	return apperrors.NewStorage(op, err)
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{KeyAttr: &types.AttributeValueMemberS{Value: id}}
}

func decode(raw map[string]types.AttributeValue) (Item, error) {
	item := Item{}
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// conditionExpression renders a Condition. Deletes without a condition still
// require the item to exist so a missing key is reported.
func conditionExpression(cond *Condition, isDelete bool) (*string, map[string]string, map[string]types.AttributeValue, error) {
	names := map[string]string{"#pk": KeyAttr}
	var clauses []string
	var values map[string]types.AttributeValue

	switch {
	case cond != nil && cond.MustNotExist:
		clauses = append(clauses, "attribute_not_exists(#pk)")
	case isDelete && (cond == nil || len(cond.Equals) == 0):
		clauses = append(clauses, "attribute_exists(#pk)")
	}

	if cond != nil && len(cond.Equals) > 0 {
		attrs := make([]string, 0, len(cond.Equals))
		for attr := range cond.Equals {
			attrs = append(attrs, attr)
		}
		sort.Strings(attrs)

		values = make(map[string]types.AttributeValue, len(attrs))
		for i, attr := range attrs {
			av, err := attributevalue.Marshal(cond.Equals[attr])
			if err != nil {
				return nil, nil, nil, err
			}
			n, v := fmt.Sprintf("#c%d", i), fmt.Sprintf(":c%d", i)
			names[n] = attr
			values[v] = av
			clauses = append(clauses, n+" = "+v)
		}
	}

	if len(clauses) == 0 {
		return nil, nil, nil, nil
	}
	if !strings.Contains(strings.Join(clauses, " "), "#pk") {
		delete(names, "#pk")
	}
	return aws.String(strings.Join(clauses, " AND ")), names, values, nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return err != nil && errors.As(err, &ccf)
}
