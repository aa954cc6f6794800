package inventory

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 自定义ID模板引擎
//
// 设计说明:
// 1. 模板是有序的段列表,渲染时按序拼接,段之间没有分隔符
//    (需要分隔符时用text段表达,如 "INV-")
// 2. 随机段采样后以十进制输出;定宽随机段取模后左补零
// 3. 未知段类型输出空串(fail-open):新版客户端配置的新段类型
//    不会导致旧版服务端创建物品失败,只是该段不出现在ID里
//
// 示例模板: [{text "INV-"}, {sequence 宽度4}]
// 依次渲染: "INV-0001", "INV-0002", ...

// 段类型
const (
	SegmentText     = "text"     // 字面文本,原样输出
	SegmentRand20   = "rand20"   // [0, 2^20)随机整数,十进制
	SegmentRand32   = "rand32"   // [0, 2^32)随机整数,十进制
	SegmentRand6D   = "rand6d"   // 20位随机数 mod 10^6,补零到6位
	SegmentRand9D   = "rand9d"   // 32位随机数 mod 10^9,补零到9位
	SegmentGUID     = "guid"     // 全局唯一随机串(与序号无关)
	SegmentDateTime = "datetime" // 创建时刻,固定可排序文本格式
	SegmentSequence = "sequence" // 序号,补零到MinWidth位
)

// Segment 模板中的单个段
type Segment struct {
	Type     string `json:"type"`
	Value    string `json:"value,omitempty"`     // text段的字面内容
	MinWidth int    `json:"min_width,omitempty"` // sequence段的最小宽度(补零)
}

// Format 自定义ID模板(有序段列表)
type Format []Segment

// RenderContext 渲染上下文
// Now和Sequence由调用方提供,保证datetime/sequence段可确定性渲染
type RenderContext struct {
	Now      time.Time
	Sequence uint64
}

// Render 按模板渲染自定义ID
func (f Format) Render(rc RenderContext) string {
	var sb strings.Builder

	for _, seg := range f {
		switch seg.Type {
		case SegmentText:
			sb.WriteString(seg.Value)

		case SegmentRand20:
			sb.WriteString(fmt.Sprintf("%d", rand.Intn(1<<20)))

		case SegmentRand32:
			sb.WriteString(fmt.Sprintf("%d", rand.Int63n(1<<32)))

		case SegmentRand6D:
			sb.WriteString(fmt.Sprintf("%06d", rand.Intn(1<<20)%1000000))

		case SegmentRand9D:
			sb.WriteString(fmt.Sprintf("%09d", rand.Int63n(1<<32)%1000000000))

		case SegmentGUID:
			sb.WriteString(uuid.NewString())

		case SegmentDateTime:
			// UTC + RFC3339,字典序即时间序
			sb.WriteString(rc.Now.UTC().Format(time.RFC3339))

		case SegmentSequence:
			width := seg.MinWidth
			if width <= 0 {
				width = 1
			}
			sb.WriteString(fmt.Sprintf("%0*d", width, rc.Sequence))

		default:
			// 未知段类型输出空串(fail-open),不中断创建
		}
	}

	return sb.String()
}
