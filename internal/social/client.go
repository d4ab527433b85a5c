// Package social はX API v2への投稿クライアントを提供する。
// 投稿は機会的であり、失敗しても呼び出し元の処理には影響しない前提で使う。
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// defaultEndpoint はX API v2のツイート投稿エンドポイント。
const defaultEndpoint = "https://api.twitter.com/2/tweets"

// Client はX API v2の投稿クライアント。
// Bearerトークンによる認証で短文を1件投稿する。
type Client struct {
	httpClient  *http.Client
	bearerToken string
	logger      *slog.Logger
	endpoint    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientには投稿タイムアウトを設定したクライアントを渡すこと。
func NewClient(httpClient *http.Client, bearerToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:  httpClient,
		bearerToken: bearerToken,
		logger:      logger,
		endpoint:    defaultEndpoint,
	}
}

// postRequest はツイート投稿APIのリクエストボディ。
type postRequest struct {
	Text string `json:"text"`
}

// Post は短文を1件投稿する。
// 201以外のステータスはエラーとして返す。レスポンスボディは読み捨てる。
func (c *Client) Post(ctx context.Context, text string) error {
	payload, err := json.Marshal(postRequest{Text: text})
	if err != nil {
		return fmt.Errorf("リクエストボディの構築に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("ソーシャル投稿APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		c.logger.Warn("ソーシャル投稿APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("ソーシャル投稿APIがステータス %d を返しました", resp.StatusCode)
	}

	return nil
}
