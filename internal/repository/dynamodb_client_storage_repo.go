package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI はDynamoDBクライアントのうちリポジトリが使用する操作のインターフェース。
// *dynamodb.Client が満たす。テスト時にフェイクに差し替え可能。
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// dynamoClientStorageItem はDynamoDBに保存する1エントリ。
// PK: CLIENT#<clientID>, SK: KEY#<key>。expires_at はテーブルのTTL属性として使用する。
type dynamoClientStorageItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updated_at"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// DynamoDBClientStorageRepo はDynamoDBを使用したクライアントストレージリポジトリ。
type DynamoDBClientStorageRepo struct {
	client    DynamoDBAPI
	tableName string
	retention time.Duration
	now       func() time.Time
}

// NewDynamoDBClientStorageRepo はDynamoDBClientStorageRepoを生成する。
// retentionは各エントリのTTL（最終更新からの保持期間）に使用する。
func NewDynamoDBClientStorageRepo(client DynamoDBAPI, tableName string, retention time.Duration) *DynamoDBClientStorageRepo {
	return &DynamoDBClientStorageRepo{
		client:    client,
		tableName: tableName,
		retention: retention,
		now:       time.Now,
	}
}

func dynamoKey(clientID, key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "CLIENT#" + clientID},
		"SK": &types.AttributeValueMemberS{Value: "KEY#" + key},
	}
}

// Get は指定クライアント・キーの値を取得する。存在しない場合はfalseを返す。
func (r *DynamoDBClientStorageRepo) Get(ctx context.Context, clientID, key string) ([]byte, bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       dynamoKey(clientID, key),
	})
	if err != nil {
		return nil, false, fmt.Errorf("DynamoDBからの取得に失敗しました: %w", err)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	var item dynamoClientStorageItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, fmt.Errorf("DynamoDBアイテムの変換に失敗しました: %w", err)
	}

	return []byte(item.Value), true, nil
}

// Put は指定クライアント・キーに値を保存する。既存の値は上書きする。
// 同じクライアントの他のキーの expires_at も延長し、クライアント単位で期限切れになるようにする。
func (r *DynamoDBClientStorageRepo) Put(ctx context.Context, clientID, key string, value []byte) error {
	now := r.now()
	item := dynamoClientStorageItem{
		PK:        "CLIENT#" + clientID,
		SK:        "KEY#" + key,
		Value:     string(value),
		UpdatedAt: now.UTC().Format(time.RFC3339),
		ExpiresAt: now.Add(r.retention).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("DynamoDBアイテムの変換に失敗しました: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("DynamoDBへの保存に失敗しました: %w", err)
	}

	return r.touchSiblings(ctx, item.PK, item.SK, item.UpdatedAt, item.ExpiresAt)
}

// touchSiblings は同じPKを持つskip以外のアイテムの updated_at と expires_at を更新する。
func (r *DynamoDBClientStorageRepo) touchSiblings(ctx context.Context, pk, skip, updatedAt string, expiresAt int64) error {
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		ProjectionExpression: aws.String("PK, SK"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("DynamoDBのクエリに失敗しました: %w", err)
		}
		for _, it := range page.Items {
			sk, ok := it["SK"].(*types.AttributeValueMemberS)
			if !ok || sk.Value == skip {
				continue
			}
			if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
				TableName:        aws.String(r.tableName),
				Key:              map[string]types.AttributeValue{"PK": it["PK"], "SK": sk},
				UpdateExpression: aws.String("SET updated_at = :u, expires_at = :e"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":u": &types.AttributeValueMemberS{Value: updatedAt},
					":e": &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt, 10)},
				},
			}); err != nil {
				return fmt.Errorf("DynamoDBの有効期限更新に失敗しました: %w", err)
			}
		}
	}
	return nil
}

// DeleteStale は何もしない。期限切れエントリはテーブルのTTL（expires_at）で削除される。
func (r *DynamoDBClientStorageRepo) DeleteStale(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// compile-time interface check
var _ ClientStorageRepository = (*DynamoDBClientStorageRepo)(nil)
