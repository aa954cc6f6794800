package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 物品、评论与点赞集成测试

// TestItemLifecycle 物品增删改查流程
func TestItemLifecycle(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "itemowner")
	invID := CreateTestInventory(t, token, "物品测试清单", true, nil)

	item := CreateTestItem(t, token, invID, "测试物品", "")
	itemURL := fmt.Sprintf("%s/inventories/%d/items/%d", BaseURL, invID, item.ItemID)

	t.Run("查询物品详情", func(t *testing.T) {
		resp := GetJSON(t, itemURL, token)
		require.Equal(t, 0, resp.Code, "查询物品失败: %s", resp.Message)

		var detail struct {
			Name     string `json:"name"`
			CustomID string `json:"custom_id"`
			Version  int    `json:"version"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &detail))
		assert.Equal(t, "测试物品", detail.Name)
		assert.Equal(t, item.CustomID, detail.CustomID)
		assert.Equal(t, 1, detail.Version, "新建物品版本为1")
		t.Logf("✓ 物品详情: %s (%s)", detail.Name, detail.CustomID)
	})

	t.Run("带版本更新物品", func(t *testing.T) {
		resp := PutJSON(t, itemURL, map[string]interface{}{
			"name":    "改名后的物品",
			"version": 1,
		}, token)
		require.Equal(t, 0, resp.Code, "更新物品失败: %s", resp.Message)

		var data ItemData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 2, data.Version)
		t.Logf("✓ 物品版本: 1 → %d", data.Version)
	})

	t.Run("陈旧版本更新物品被拒绝", func(t *testing.T) {
		resp := PutJSON(t, itemURL, map[string]interface{}{
			"name":    "不应生效",
			"version": 1,
		}, token)
		assert.Equal(t, 40901, resp.Code, "期望版本冲突")
		t.Log("✓ 陈旧版本被拒绝")
	})

	t.Run("列表包含已创建物品", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/inventories/%d/items", BaseURL, invID), token)
		require.Equal(t, 0, resp.Code, "物品列表失败: %s", resp.Message)

		var page struct {
			Total int64 `json:"total"`
			List  []struct {
				Name string `json:"name"`
			} `json:"list"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.GreaterOrEqual(t, page.Total, int64(1))
		t.Logf("✓ 列表共%d件物品", page.Total)
	})

	t.Run("删除物品后查询返回404", func(t *testing.T) {
		delResp := DeleteJSON(t, itemURL, token)
		require.Equal(t, 0, delResp.Code, "删除物品失败: %s", delResp.Message)

		getResp := GetJSON(t, itemURL, token)
		assert.Equal(t, 40403, getResp.Code)
		t.Log("✓ 已删除物品不可查询")
	})
}

// TestCommentAndLike 评论与点赞流程
func TestCommentAndLike(t *testing.T) {
	RequireServer(t)

	_, ownerToken := RegisterTestUser(t, "cmtowner")
	_, visitorToken := RegisterTestUser(t, "cmtvisitor")

	invID := CreateTestInventory(t, ownerToken, "评论测试清单", true, nil)
	item := CreateTestItem(t, ownerToken, invID, "被点赞的物品", "")

	t.Run("公开清单访客可评论", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/inventories/%d/comments", BaseURL, invID),
			map[string]interface{}{"body": "这个清单不错"}, visitorToken)
		require.Equal(t, 0, resp.Code, "发表评论失败: %s", resp.Message)

		listResp := GetJSON(t, fmt.Sprintf("%s/inventories/%d/comments", BaseURL, invID), "")
		require.Equal(t, 0, listResp.Code)
		t.Log("✓ 评论发表并可匿名读取")
	})

	t.Run("空评论被拒绝", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/inventories/%d/comments", BaseURL, invID),
			map[string]interface{}{"body": ""}, visitorToken)
		assert.NotEqual(t, 0, resp.Code, "空评论应被拒绝")
		t.Log("✓ 空评论被拒绝")
	})

	t.Run("点赞切换", func(t *testing.T) {
		likeURL := fmt.Sprintf("%s/inventories/%d/items/%d/like", BaseURL, invID, item.ItemID)

		resp := PostJSON(t, likeURL, nil, visitorToken)
		require.Equal(t, 0, resp.Code, "点赞失败: %s", resp.Message)
		var liked struct {
			Liked bool `json:"liked"`
			Likes int  `json:"likes"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &liked))
		assert.True(t, liked.Liked)
		assert.Equal(t, 1, liked.Likes)

		// 再点一次取消
		resp = PostJSON(t, likeURL, nil, visitorToken)
		require.Equal(t, 0, resp.Code)
		require.NoError(t, json.Unmarshal(resp.Data, &liked))
		assert.False(t, liked.Liked)
		assert.Equal(t, 0, liked.Likes)
		t.Log("✓ 点赞/取消切换正常")
	})
}
