package inventory

// 业务规则校验(跨实体的领域规则)

// 段类型校验用的已知类型集合
// 注意:Render对未知类型fail-open(输出空串),但保存模板时仍然校验
// 段的结构合法性(text段必须有内容,sequence段宽度非负)
var knownSegmentTypes = map[string]bool{
	SegmentText:     true,
	SegmentRand20:   true,
	SegmentRand32:   true,
	SegmentRand6D:   true,
	SegmentRand9D:   true,
	SegmentGUID:     true,
	SegmentDateTime: true,
	SegmentSequence: true,
}

// IsKnownSegmentType 判断段类型是否为已知类型
func IsKnownSegmentType(t string) bool {
	return knownSegmentTypes[t]
}

// ValidateFormat 校验模板结构
// 业务规则:
// 1. 段类型不能为空
// 2. text段必须有字面内容
// 3. sequence段的MinWidth不能为负数
// 未知段类型不报错(与渲染的fail-open行为一致)
func ValidateFormat(f Format) error {
	for _, seg := range f {
		if seg.Type == "" {
			return ErrInvalidSegment
		}
		if seg.Type == SegmentText && seg.Value == "" {
			return ErrInvalidSegment
		}
		if seg.MinWidth < 0 {
			return ErrInvalidSegment
		}
	}
	return nil
}

// ValidateFieldConfig 校验自定义字段配置
// 业务规则:启用的槽位必须有名称
// 槽位数量由FieldConfig的定长数组(每类型3个)天然限制
func ValidateFieldConfig(fc FieldConfig) error {
	check := func(slots [3]FieldSlot) error {
		for _, s := range slots {
			if s.State && s.Name == "" {
				return ErrInvalidFieldSlot
			}
		}
		return nil
	}

	if err := check(fc.Strings); err != nil {
		return err
	}
	if err := check(fc.Ints); err != nil {
		return err
	}
	return check(fc.Bools)
}
