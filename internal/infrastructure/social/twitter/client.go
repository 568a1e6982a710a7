package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"usmbot/internal/application/port"
	"usmbot/internal/domain/service"
)

const DefaultAPIURL = "https://api.twitter.com"

// Client 通过 Twitter v2 API 读取关注账号的最新推文
type Client struct {
	client *resty.Client
	now    func() time.Time
}

// NewClient 创建 Twitter 客户端，bearerToken 为 app-only token
func NewClient(apiURL, bearerToken string) *Client {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(apiURL, "/"))
	client.SetTimeout(30 * time.Second)
	client.SetAuthToken(bearerToken)
	client.SetHeader("User-Agent", "usmbot/twitter-go")

	return &Client{
		client: client,
		now:    time.Now,
	}
}

type tweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type timelineResponse struct {
	Data []tweet `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NewestID    string `json:"newest_id"`
	} `json:"meta"`
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// LatestPostText 返回账号今天（UTC）最新一条推文的规范化文本；今天没有发推返回 ""
func (c *Client) LatestPostText(ctx context.Context, account port.Account) (string, error) {
	if account.ID == "" {
		return "", errors.New("twitter account id empty")
	}

	now := c.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var result timelineResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"start_time":   midnight.Format(time.RFC3339),
			"max_results":  "5",
			"tweet.fields": "created_at",
		}).
		SetResult(&result).
		Get("/2/users/" + url.PathEscape(account.ID) + "/tweets")
	if err != nil {
		return "", fmt.Errorf("fetch %s timeline failed: %w", account.Handle, err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("twitter http %d for %s: %s", resp.StatusCode(), account.Handle, resp.String())
	}
	if len(result.Data) == 0 {
		if len(result.Errors) > 0 {
			return "", fmt.Errorf("twitter error for %s: %s %s", account.Handle, result.Errors[0].Title, result.Errors[0].Detail)
		}
		log.Debug().Str("account", account.Handle).Msg("no posts today")
		return "", nil
	}

	// 时间线按时间倒序返回
	latest := result.Data[0]
	log.Debug().
		Str("account", account.Handle).
		Str("tweetID", latest.ID).
		Str("createdAt", latest.CreatedAt).
		Msg("latest post fetched")
	return service.NormalizeText(latest.Text), nil
}

var _ port.SocialFeedReader = (*Client)(nil)
