package inventory

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

// 固定的渲染上下文,保证确定性段可以精确断言
func fixedContext(seq uint64) RenderContext {
	return RenderContext{
		Now:      time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
		Sequence: seq,
	}
}

// TestFormat_RenderLiteralAndSequence 字面文本+序号段
func TestFormat_RenderLiteralAndSequence(t *testing.T) {
	format := Format{
		{Type: SegmentText, Value: "INV-"},
		{Type: SegmentSequence, MinWidth: 4},
	}

	got := format.Render(fixedContext(1))
	if got != "INV-0001" {
		t.Errorf("期望INV-0001，实际%s", got)
	}

	got = format.Render(fixedContext(2))
	if got != "INV-0002" {
		t.Errorf("期望INV-0002，实际%s", got)
	}
}

// TestFormat_RenderSequenceWidth 序号超过最小宽度时不截断
func TestFormat_RenderSequenceWidth(t *testing.T) {
	format := Format{{Type: SegmentSequence, MinWidth: 2}}

	if got := format.Render(fixedContext(7)); got != "07" {
		t.Errorf("期望07，实际%s", got)
	}
	if got := format.Render(fixedContext(12345)); got != "12345" {
		t.Errorf("期望12345，实际%s", got)
	}

	// MinWidth未配置时默认宽度1
	format = Format{{Type: SegmentSequence}}
	if got := format.Render(fixedContext(9)); got != "9" {
		t.Errorf("期望9，实际%s", got)
	}
}

// TestFormat_RenderDateTime 时间段输出固定可排序格式
func TestFormat_RenderDateTime(t *testing.T) {
	format := Format{{Type: SegmentDateTime}}

	got := format.Render(fixedContext(1))
	if got != "2025-06-15T10:30:00Z" {
		t.Errorf("期望RFC3339 UTC格式，实际%s", got)
	}
}

// TestFormat_RenderFixedWidthRandom 定宽随机段总是输出固定位数
func TestFormat_RenderFixedWidthRandom(t *testing.T) {
	// 随机段无法断言具体值,断言位数和数字性
	for i := 0; i < 100; i++ {
		got := Format{{Type: SegmentRand6D}}.Render(fixedContext(1))
		if len(got) != 6 {
			t.Fatalf("rand6d期望6位，实际%d位: %s", len(got), got)
		}
		if _, err := strconv.Atoi(got); err != nil {
			t.Fatalf("rand6d期望纯数字，实际%s", got)
		}

		got = Format{{Type: SegmentRand9D}}.Render(fixedContext(1))
		if len(got) != 9 {
			t.Fatalf("rand9d期望9位，实际%d位: %s", len(got), got)
		}
	}
}

// TestFormat_RenderRandRange 随机段的取值范围
func TestFormat_RenderRandRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		got := Format{{Type: SegmentRand20}}.Render(fixedContext(1))
		n, err := strconv.ParseUint(got, 10, 64)
		if err != nil {
			t.Fatalf("rand20期望十进制整数，实际%s", got)
		}
		if n >= 1<<20 {
			t.Fatalf("rand20期望小于2^20，实际%d", n)
		}

		got = Format{{Type: SegmentRand32}}.Render(fixedContext(1))
		n, err = strconv.ParseUint(got, 10, 64)
		if err != nil {
			t.Fatalf("rand32期望十进制整数，实际%s", got)
		}
		if n >= 1<<32 {
			t.Fatalf("rand32期望小于2^32，实际%d", n)
		}
	}
}

// TestFormat_RenderGUID guid段每次输出不同的随机串
func TestFormat_RenderGUID(t *testing.T) {
	format := Format{{Type: SegmentGUID}}

	a := format.Render(fixedContext(1))
	b := format.Render(fixedContext(1))

	if a == "" || b == "" {
		t.Fatal("guid段不应输出空串")
	}
	if a == b {
		t.Errorf("guid段期望每次不同，实际两次相同: %s", a)
	}
}

// TestFormat_RenderUnknownSegment 未知段类型输出空串,不中断渲染
func TestFormat_RenderUnknownSegment(t *testing.T) {
	format := Format{
		{Type: SegmentText, Value: "A-"},
		{Type: "hologram"}, // 未来的新段类型
		{Type: SegmentSequence, MinWidth: 3},
	}

	got := format.Render(fixedContext(5))
	if got != "A-005" {
		t.Errorf("未知段应输出空串，期望A-005，实际%s", got)
	}
}

// TestFormat_RenderEmpty 空模板输出空串
func TestFormat_RenderEmpty(t *testing.T) {
	if got := (Format{}).Render(fixedContext(1)); got != "" {
		t.Errorf("空模板期望空串，实际%s", got)
	}
}

// TestFormat_RenderConcatOrder 段按模板顺序拼接,无分隔符
func TestFormat_RenderConcatOrder(t *testing.T) {
	format := Format{
		{Type: SegmentText, Value: "EQ"},
		{Type: SegmentText, Value: "-"},
		{Type: SegmentSequence, MinWidth: 2},
		{Type: SegmentText, Value: "-"},
		{Type: SegmentDateTime},
	}

	got := format.Render(fixedContext(3))
	if !strings.HasPrefix(got, "EQ-03-2025-06-15") {
		t.Errorf("拼接顺序错误: %s", got)
	}
}

// TestValidateFormat 模板结构校验
func TestValidateFormat(t *testing.T) {
	// 合法模板
	ok := Format{
		{Type: SegmentText, Value: "INV-"},
		{Type: SegmentSequence, MinWidth: 4},
	}
	if err := ValidateFormat(ok); err != nil {
		t.Errorf("合法模板不应报错: %v", err)
	}

	// 未知段类型不报错(与渲染fail-open一致)
	unknown := Format{{Type: "hologram"}}
	if err := ValidateFormat(unknown); err != nil {
		t.Errorf("未知段类型不应报错: %v", err)
	}

	// text段缺少内容
	bad := Format{{Type: SegmentText}}
	if err := ValidateFormat(bad); err != ErrInvalidSegment {
		t.Errorf("期望ErrInvalidSegment，实际%v", err)
	}

	// 段类型为空
	bad = Format{{Type: ""}}
	if err := ValidateFormat(bad); err != ErrInvalidSegment {
		t.Errorf("期望ErrInvalidSegment，实际%v", err)
	}

	// 负宽度
	bad = Format{{Type: SegmentSequence, MinWidth: -1}}
	if err := ValidateFormat(bad); err != ErrInvalidSegment {
		t.Errorf("期望ErrInvalidSegment，实际%v", err)
	}
}
