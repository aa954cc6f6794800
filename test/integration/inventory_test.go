package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 清单与编号规则集成测试
// 覆盖：创建清单、模板编号、序号单调性、自定义ID冲突、乐观锁版本冲突

// TestInventoryNumberingFlow 清单编号完整流程
func TestInventoryNumberingFlow(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "numowner")

	// 模板: "INV-" + 4位补零序号
	format := []map[string]interface{}{
		{"type": "text", "value": "INV-"},
		{"type": "sequence", "min_width": 4},
	}
	invID := CreateTestInventory(t, token, "编号测试清单", true, format)
	t.Logf("✓ 清单创建成功: ID=%d", invID)

	t.Run("模板按序号渲染", func(t *testing.T) {
		item1 := CreateTestItem(t, token, invID, "第一件", "")
		assert.Equal(t, "INV-0001", item1.CustomID)
		assert.Equal(t, uint64(1), item1.Sequence)

		item2 := CreateTestItem(t, token, invID, "第二件", "")
		assert.Equal(t, "INV-0002", item2.CustomID)
		assert.Equal(t, uint64(2), item2.Sequence)

		t.Logf("✓ 物品编号: %s, %s", item1.CustomID, item2.CustomID)
	})

	t.Run("计数器随创建递增", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/inventories/%d/numbers", BaseURL, invID), token)
		require.Equal(t, 0, resp.Code, "查询编号规则失败: %s", resp.Message)

		var data NumberingData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), data.NextSequence, "创建2件物品后计数器应为3")
		t.Logf("✓ next_sequence=%d", data.NextSequence)
	})

	t.Run("调用方自带ID跳过模板和计数器", func(t *testing.T) {
		item := CreateTestItem(t, token, invID, "手动编号", "MANUAL-X")
		assert.Equal(t, "MANUAL-X", item.CustomID)

		// 计数器不受影响
		resp := GetJSON(t, fmt.Sprintf("%s/inventories/%d/numbers", BaseURL, invID), token)
		require.Equal(t, 0, resp.Code)
		var data NumberingData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, uint64(3), data.NextSequence)
		t.Log("✓ 手动编号未消耗序号")
	})

	t.Run("自定义ID清单内重复被拒绝", func(t *testing.T) {
		req := map[string]interface{}{"name": "重复编号", "custom_id": "MANUAL-X"}
		resp := PostJSON(t, fmt.Sprintf("%s/inventories/%d/items", BaseURL, invID), req, token)
		assert.Equal(t, 40902, resp.Code, "期望自定义ID冲突")
		t.Logf("✓ 冲突被拒绝: %s", resp.Message)
	})

	t.Run("重置计数器不改模板", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/inventories/%d/numbers", BaseURL, invID),
			map[string]interface{}{"reset_sequence_to": 100}, token)
		require.Equal(t, 0, resp.Code, "重置计数器失败: %s", resp.Message)

		item := CreateTestItem(t, token, invID, "重置后的物品", "")
		assert.Equal(t, "INV-0100", item.CustomID, "模板应保留，序号从100继续")
		t.Logf("✓ 重置后编号: %s", item.CustomID)
	})
}

// TestInventoryVersionConflict 乐观锁版本冲突
func TestInventoryVersionConflict(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "verowner")
	invID := CreateTestInventory(t, token, "版本测试清单", false, nil)

	url := fmt.Sprintf("%s/inventories/%d", BaseURL, invID)

	t.Run("携带正确版本更新成功", func(t *testing.T) {
		// 新建清单版本号为1
		resp := PutJSON(t, url, map[string]interface{}{
			"title":   "更新后的标题",
			"version": 1,
		}, token)
		require.Equal(t, 0, resp.Code, "更新失败: %s", resp.Message)

		var data InventoryData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 2, data.Version, "成功更新后版本加1")
		t.Logf("✓ 版本: 1 → %d", data.Version)
	})

	t.Run("陈旧版本被拒绝且无副作用", func(t *testing.T) {
		resp := PutJSON(t, url, map[string]interface{}{
			"title":   "不应生效的标题",
			"version": 1, // 已经是2了
		}, token)
		assert.Equal(t, 40901, resp.Code, "期望版本冲突")

		getResp := GetJSON(t, url, token)
		require.Equal(t, 0, getResp.Code)
		var detail struct {
			Title   string `json:"title"`
			Version int    `json:"version"`
		}
		require.NoError(t, json.Unmarshal(getResp.Data, &detail))
		assert.Equal(t, "更新后的标题", detail.Title, "冲突的写入不应产生任何修改")
		assert.Equal(t, 2, detail.Version)
		t.Log("✓ 冲突写入无副作用")
	})

	t.Run("不带版本的无条件更新成功", func(t *testing.T) {
		resp := PutJSON(t, url, map[string]interface{}{"title": "无条件更新"}, token)
		require.Equal(t, 0, resp.Code, "更新失败: %s", resp.Message)

		var data InventoryData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 3, data.Version)
		t.Logf("✓ 无条件更新, 版本=%d", data.Version)
	})
}

// TestInventoryAccessControl 访问控制
func TestInventoryAccessControl(t *testing.T) {
	RequireServer(t)

	_, ownerToken := RegisterTestUser(t, "aclowner")
	otherEmail, otherToken := RegisterTestUser(t, "aclother")

	privateID := CreateTestInventory(t, ownerToken, "私有清单", false, nil)
	publicID := CreateTestInventory(t, ownerToken, "公开清单", true, nil)

	t.Run("匿名可读公开清单", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/inventories/%d", BaseURL, publicID), "")
		assert.Equal(t, 0, resp.Code, "公开清单应匿名可读")
		t.Log("✓ 匿名读取公开清单成功")
	})

	t.Run("非授权用户不可读私有清单", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/inventories/%d", BaseURL, privateID), otherToken)
		assert.Equal(t, 40104, resp.Code, "私有清单对外应不可见")
		t.Log("✓ 私有清单读取被拒绝")
	})

	t.Run("公开不等于可写", func(t *testing.T) {
		req := map[string]interface{}{"name": "越权物品"}
		resp := PostJSON(t, fmt.Sprintf("%s/inventories/%d/items", BaseURL, publicID), req, otherToken)
		assert.Equal(t, 40104, resp.Code, "公开清单非授权用户不可写")
		t.Log("✓ 公开清单写入被拒绝")
	})

	t.Run("授权后可写", func(t *testing.T) {
		// 查出对方的用户ID
		searchResp := GetJSON(t, BaseURL+"/users/search?q="+otherEmail, ownerToken)
		require.Equal(t, 0, searchResp.Code, "用户搜索失败: %s", searchResp.Message)
		var users []struct {
			UserID uint `json:"user_id"`
		}
		require.NoError(t, json.Unmarshal(searchResp.Data, &users))
		require.NotEmpty(t, users, "应能按邮箱搜到用户")

		grantResp := PutJSON(t, fmt.Sprintf("%s/inventories/%d/access", BaseURL, publicID),
			map[string]interface{}{"user_ids": []uint{users[0].UserID}}, ownerToken)
		require.Equal(t, 0, grantResp.Code, "授权失败: %s", grantResp.Message)

		item := CreateTestItem(t, otherToken, publicID, "授权后的物品", "")
		assert.NotZero(t, item.ItemID)
		t.Logf("✓ 授权用户创建物品成功: ID=%d", item.ItemID)
	})

	t.Run("不存在的清单返回404而非403", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/inventories/99999999", otherToken)
		assert.Equal(t, 40402, resp.Code, "不存在应优先于无权限")
		t.Log("✓ 不存在的清单返回40402")
	})
}
