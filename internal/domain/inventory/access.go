package inventory

// 访问策略判定
//
// 设计说明:
// 1. 纯函数:只依赖入参(操作者/清单/授权名单),不查库、不缓存
//    授权名单由调用方按请求新鲜加载,避免缓存过期的授权判定
// 2. 查看与写入分离:公开清单任何人可看,但公开从不意味着可写

// Actor 当前操作者
// nil表示未登录(匿名请求)
type Actor struct {
	ID      uint
	IsAdmin bool
}

// CanView 判断操作者能否查看清单
// 规则(短路求值):
// 1. 公开清单 → 任何人可看(含匿名)
// 2. 私有清单 + 匿名 → 不可看
// 3. 管理员/所有者/授权名单内 → 可看
func CanView(actor *Actor, inv *Inventory, grants []AccessGrant) bool {
	if inv.IsPublic {
		return true
	}
	if actor == nil {
		return false
	}
	return CanWrite(actor, inv, grants)
}

// CanWrite 判断操作者能否修改清单(含创建/修改/删除物品)
// 规则:仅管理员/所有者/授权名单内可写,公开可见不授予写权限
func CanWrite(actor *Actor, inv *Inventory, grants []AccessGrant) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	if inv.IsOwnedBy(actor.ID) {
		return true
	}
	for _, g := range grants {
		if g.UserID == actor.ID {
			return true
		}
	}
	return false
}
