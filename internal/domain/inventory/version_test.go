package inventory

import (
	"testing"
)

// TestVersionCheck_Unconditional 无条件模式任何版本都通过
func TestVersionCheck_Unconditional(t *testing.T) {
	check := Unconditional()

	if check.IsStrict() {
		t.Error("Unconditional不应为严格模式")
	}
	for _, v := range []int{0, 1, 100} {
		if !check.Matches(v) {
			t.Errorf("无条件模式应通过任意版本，版本%d未通过", v)
		}
	}
}

// TestVersionCheck_ExpectVersion 严格模式只通过精确匹配
func TestVersionCheck_ExpectVersion(t *testing.T) {
	check := ExpectVersion(3)

	if !check.IsStrict() {
		t.Error("ExpectVersion应为严格模式")
	}
	if check.Expected() != 3 {
		t.Errorf("期望Expected()=3，实际%d", check.Expected())
	}
	if !check.Matches(3) {
		t.Error("版本3应通过检查")
	}
	if check.Matches(2) || check.Matches(4) {
		t.Error("版本不匹配应被拒绝")
	}
}

// TestVersionCheck_ZeroIsLegitimate 版本号0是合法的期望版本
// (这是显式类型相对"version非零即严格"隐式约定的关键差异)
func TestVersionCheck_ZeroIsLegitimate(t *testing.T) {
	check := ExpectVersion(0)

	if !check.IsStrict() {
		t.Error("ExpectVersion(0)应为严格模式")
	}
	if !check.Matches(0) {
		t.Error("版本0应通过ExpectVersion(0)")
	}
	if check.Matches(1) {
		t.Error("版本1不应通过ExpectVersion(0)")
	}
}

// TestVersionCheck_FromRequest 从请求DTO构造
func TestVersionCheck_FromRequest(t *testing.T) {
	// nil → 无条件
	if FromRequest(nil).IsStrict() {
		t.Error("version=nil应为无条件模式")
	}

	// 指针非nil → 严格(包括0)
	zero := 0
	check := FromRequest(&zero)
	if !check.IsStrict() || check.Expected() != 0 {
		t.Error("version=0应为严格模式且期望版本为0")
	}

	five := 5
	check = FromRequest(&five)
	if !check.IsStrict() || check.Expected() != 5 {
		t.Error("version=5应为严格模式且期望版本为5")
	}
}

// TestInventory_ConsumeSequence 序号消费推进计数器
func TestInventory_ConsumeSequence(t *testing.T) {
	inv := NewInventory(1, "t", "", "", false)

	if seq := inv.ConsumeSequence(); seq != 1 {
		t.Errorf("首个序号期望1，实际%d", seq)
	}
	if seq := inv.ConsumeSequence(); seq != 2 {
		t.Errorf("第二个序号期望2，实际%d", seq)
	}
	if inv.NextSequence != 3 {
		t.Errorf("计数器期望3，实际%d", inv.NextSequence)
	}
}

// TestInventory_ApplyNumbering 模板与计数器各自独立生效
func TestInventory_ApplyNumbering(t *testing.T) {
	inv := NewInventory(1, "t", "", "", false)
	inv.Format = Format{{Type: SegmentText, Value: "OLD-"}}
	inv.NextSequence = 42

	// 只改模板
	newFormat := Format{{Type: SegmentText, Value: "NEW-"}}
	inv.ApplyNumbering(&newFormat, nil)
	if inv.Format[0].Value != "NEW-" {
		t.Error("模板应已更新")
	}
	if inv.NextSequence != 42 {
		t.Errorf("计数器不应变化，实际%d", inv.NextSequence)
	}

	// 只重置计数器(0是合法值)
	var reset uint64 = 0
	inv.ApplyNumbering(nil, &reset)
	if inv.NextSequence != 0 {
		t.Errorf("计数器期望0，实际%d", inv.NextSequence)
	}
	if inv.Format[0].Value != "NEW-" {
		t.Error("模板不应变化")
	}
}
