package port

import "context"

// Account 被关注的社交账号
type Account struct {
	Handle string // 显示名，例如 "Bankless"
	ID     string // 平台用户 ID
}

// SocialFeedReader 返回账号最新一条帖子的规范化文本
type SocialFeedReader interface {
	// LatestPostText 当天没有新帖时返回 ""
	LatestPostText(ctx context.Context, account Account) (string, error)
}
