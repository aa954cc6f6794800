package inventory

// 乐观锁版本检查
//
// 设计说明:
// 双模式检查做成显式类型,而不是"version字段非零即严格"的隐式约定:
// 版本号0也是合法值,隐式约定会把它误判为"未携带版本"。
// - Unconditional: 无条件写入(last-writer-wins),适合低风险字段编辑
// - ExpectVersion(v): 当前版本必须等于v才接受写入,否则返回冲突

// VersionCheck 写入时的版本检查模式
type VersionCheck struct {
	expect *int
}

// Unconditional 无条件写入(不做版本比对)
func Unconditional() VersionCheck {
	return VersionCheck{}
}

// ExpectVersion 严格写入:当前版本必须等于v
func ExpectVersion(v int) VersionCheck {
	return VersionCheck{expect: &v}
}

// IsStrict 是否为严格模式
func (c VersionCheck) IsStrict() bool {
	return c.expect != nil
}

// Expected 严格模式下期望的版本号
// 仅在IsStrict()为true时有意义
func (c VersionCheck) Expected() int {
	if c.expect == nil {
		return 0
	}
	return *c.expect
}

// Matches 判断当前版本是否通过检查
func (c VersionCheck) Matches(current int) bool {
	if c.expect == nil {
		return true
	}
	return *c.expect == current
}

// FromRequest 从请求DTO构造版本检查
// version为nil表示请求未携带版本(无条件写入)
func FromRequest(version *int) VersionCheck {
	if version == nil {
		return Unconditional()
	}
	return ExpectVersion(*version)
}
