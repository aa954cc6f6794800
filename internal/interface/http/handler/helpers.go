package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// paramID 解析路径参数中的资源ID
// 返回0表示解析失败,调用方应返回参数错误
func paramID(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// queryInt 解析查询参数中的整数,缺省或非法时返回默认值
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
