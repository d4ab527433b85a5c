// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, content, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodePermissionDenied      = "PERMISSION_DENIED"
	ErrCodeArticleNotFound       = "ARTICLE_NOT_FOUND"
	ErrCodeNewsletterNotFound    = "NEWSLETTER_NOT_FOUND"
	ErrCodePublisherNotFound     = "PUBLISHER_NOT_FOUND"
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeDuplicateSubscription = "DUPLICATE_SUBSCRIPTION"
	ErrCodeSubscriptionNotFound  = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeUsernameTaken         = "USERNAME_TAKEN"
	ErrCodeInvalidRole           = "INVALID_ROLE"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewPermissionDeniedError は権限エラーを生成する。
// reasonには拒否された操作の説明を指定する。
func NewPermissionDeniedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  fmt.Sprintf("この操作を行う権限がありません: %s", reason),
		Category: "auth",
		Action:   "必要な役割を持つアカウントでログインしてください。",
	}
}

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", articleID),
		Category: "content",
		Action:   "記事IDを確認してください。",
	}
}

// NewNewsletterNotFoundError はニュースレター未検出エラーを生成する。
func NewNewsletterNotFoundError(newsletterID string) *APIError {
	return &APIError{
		Code:     ErrCodeNewsletterNotFound,
		Message:  fmt.Sprintf("指定されたニュースレターが見つかりません: %s", newsletterID),
		Category: "content",
		Action:   "ニュースレターIDを確認してください。",
	}
}

// NewPublisherNotFoundError は発行元未検出エラーを生成する。
func NewPublisherNotFoundError(publisherID string) *APIError {
	return &APIError{
		Code:     ErrCodePublisherNotFound,
		Message:  fmt.Sprintf("指定された発行元が見つかりません: %s", publisherID),
		Category: "content",
		Action:   "発行元IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewDuplicateSubscriptionError は重複購読エラーを生成する。
func NewDuplicateSubscriptionError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSubscription,
		Message:  "すでに購読しています。",
		Category: "content",
		Action:   "購読一覧を確認してください。",
	}
}

// NewSubscriptionNotFoundError は購読が見つからない場合のエラーを生成する。
func NewSubscriptionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionNotFound,
		Message:  "指定された購読が見つかりません。",
		Category: "content",
		Action:   "購読一覧を確認してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("ユーザー名「%s」はすでに使用されています。", username),
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewInvalidRoleError は未知の役割を指定された場合のエラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効な役割です: %s", role),
		Category: "validation",
		Action:   "役割には READER、JOURNALIST、EDITOR のいずれかを指定してください。",
	}
}
