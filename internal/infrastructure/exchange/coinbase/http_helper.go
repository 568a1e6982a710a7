package coinbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// apiError Coinbase 错误响应
type apiError struct {
	Message string `json:"message"`
}

// response 保留状态码，下单时需要区分拒绝和成功
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// message 返回响应中的 message 字段（没有则为空）
func (r *response) message() string {
	var e apiError
	if err := json.Unmarshal(r.body, &e); err != nil {
		return ""
	}
	return e.Message
}

// signedJSONRequest 发送带 JSON payload 的签名请求
func (c *APIClient) signedJSONRequest(ctx context.Context, method, path string, payload interface{}) (*response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.doSignedRequest(ctx, method, path, body)
}

// signedQueryRequest 发送带 query 的签名请求
func (c *APIClient) signedQueryRequest(ctx context.Context, method, path string, params url.Values) (*response, error) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.doSignedRequest(ctx, method, path, nil)
}

// doSignedRequest 签名并发送请求，requestPath 包含 query
func (c *APIClient) doSignedRequest(ctx context.Context, method, requestPath string, body []byte) (*response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, reader)
	if err != nil {
		return nil, err
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	req.Header.Set("CB-ACCESS-KEY", c.credentials.APIKey())
	req.Header.Set("CB-ACCESS-SIGN", c.credentials.Sign(timestamp, method, requestPath, body))
	req.Header.Set("CB-ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("CB-ACCESS-PASSPHRASE", c.credentials.Passphrase())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "usmbot/coinbase-go")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &response{status: resp.StatusCode, body: respBody}, nil
}

// query 用于只读接口：非 2xx 视为失败
func (c *APIClient) query(ctx context.Context, path string, params url.Values, out interface{}) error {
	resp, err := c.signedQueryRequest(ctx, http.MethodGet, path, params)
	if err != nil {
		return err
	}
	if !resp.ok() {
		if msg := resp.message(); msg != "" {
			return fmt.Errorf("coinbase http %d: %s", resp.status, msg)
		}
		return fmt.Errorf("coinbase http %d: %s", resp.status, string(resp.body))
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s response failed: %w", path, err)
	}
	return nil
}
