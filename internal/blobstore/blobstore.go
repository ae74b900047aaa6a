package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Store 内容寻址存储边界。核心把URI当不透明字符串，
// 只有证明图片和奖励元数据的上传走这里。
type Store interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// HTTPStore 固定网关的HTTP实现（pinata风格的pin接口）
type HTTPStore struct {
	gatewayURL string
	pinURL     string
	apiKey     string
	client     *http.Client
}

// NewHTTPStore 创建HTTP存储客户端
func NewHTTPStore(gatewayURL, pinURL, apiKey string) *HTTPStore {
	return &HTTPStore{
		gatewayURL: strings.TrimSuffix(gatewayURL, "/"),
		pinURL:     pinURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Store 上传内容，返回 ipfs://CID 形式的URI
func (s *HTTPStore) Store(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pinURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pin request failed with status %d", resp.StatusCode)
	}

	var result struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("pin response missing hash")
	}

	return "ipfs://" + result.IpfsHash, nil
}

// Fetch 通过网关读取URI内容
func (s *HTTPStore) Fetch(ctx context.Context, uri string) ([]byte, error) {
	cid := strings.TrimPrefix(uri, "ipfs://")
	url := fmt.Sprintf("%s/%s", s.gatewayURL, cid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway request failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
