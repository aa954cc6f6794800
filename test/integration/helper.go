package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 这些测试使用真实的服务进程（Handler → UseCase → Repository → MySQL/Redis），
// 运行前先启动MySQL/Redis和API服务：
//
//	go run ./cmd/api
//	go test -v ./test/integration/...
//
// 服务未启动时测试自动跳过（见RequireServer）

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// PingURL 健康检查URL
	PingURL = "http://localhost:8080/ping"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// InventoryData 清单响应数据
type InventoryData struct {
	InventoryID uint `json:"inventory_id"`
	Version     int  `json:"version"`
}

// ItemData 物品响应数据
type ItemData struct {
	ItemID   uint   `json:"item_id"`
	CustomID string `json:"custom_id"`
	Sequence uint64 `json:"sequence"`
	Version  int    `json:"version"`
}

// NumberingData 编号规则响应数据
type NumberingData struct {
	InventoryID  uint   `json:"inventory_id"`
	NextSequence uint64 `json:"next_sequence"`
}

// RequireServer 探测API服务,不可达时跳过测试
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(PingURL)
	if err != nil {
		t.Skipf("API服务不可达，跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// doJSON 发送JSON请求并解析统一响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(respBody, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(respBody))

	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "POST", url, data, token)
}

// PutJSON 发送PUT请求
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "PUT", url, data, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "GET", url, nil, token)
}

// DeleteJSON 发送DELETE请求
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "DELETE", url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
// 使用纳秒时间戳避免测试重复运行时邮箱冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// RegisterTestUser 注册测试用户并返回Token
func RegisterTestUser(t *testing.T, name string) (email string, token string) {
	email = GenerateTestEmail(name)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"name":     name,
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// CreateTestInventory 创建测试清单并返回清单ID
// format可为nil(空模板,物品ID退化为纯序号)
func CreateTestInventory(t *testing.T, token, title string, isPublic bool, format []map[string]interface{}) uint {
	req := map[string]interface{}{
		"title":     title,
		"category":  "equipment",
		"is_public": isPublic,
	}
	if format != nil {
		req["format"] = format
	}

	resp := PostJSON(t, BaseURL+"/inventories", req, token)
	require.Equal(t, 0, resp.Code, "创建清单失败: %s", resp.Message)

	var data InventoryData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析清单响应失败")

	return data.InventoryID
}

// CreateTestItem 创建测试物品并返回响应数据
func CreateTestItem(t *testing.T, token string, inventoryID uint, name, customID string) *ItemData {
	req := map[string]interface{}{"name": name}
	if customID != "" {
		req["custom_id"] = customID
	}

	resp := PostJSON(t, fmt.Sprintf("%s/inventories/%d/items", BaseURL, inventoryID), req, token)
	require.Equal(t, 0, resp.Code, "创建物品失败: %s", resp.Message)

	var data ItemData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析物品响应失败")

	return &data
}
