/*
Package resource 远程资源客户端边界。

每个实体一个 Client[T]，所有方法返回 (value, error)，实现不得跨边界 panic。
内存、SQL 与 HTTP 实现共享 Apply/Build 的字段合并语义。
*/
package resource

import (
	"context"

	"expoadmin/domain/shared"
)

// Client 单表 CRUD。ListPage 的 page 从 1 开始，排序固定为 created_at DESC, id DESC。
type Client[T any] interface {
	List(ctx context.Context) ([]*T, error)
	ListPage(ctx context.Context, page, pageSize int) ([]*T, int64, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, fields Fields) (*T, error)
	Update(ctx context.Context, id string, fields Fields) (*T, error)
	// Delete 重复删除返回 ok=false 与 NotFound
	Delete(ctx context.Context, id string) (bool, error)
}

// PageResult 分页结果，Total 为全集大小而非本页长度
type PageResult[T any] struct {
	Items []*T  `json:"items"`
	Total int64 `json:"total"`
}

const MaxPageSize = 200

// CheckPage 校验分页参数
func CheckPage(page, pageSize int) error {
	if page < 1 {
		return shared.NewValidationError("page", "page", "page must be >= 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return shared.NewValidationError("page", "page_size", "page_size must be between 1 and 200")
	}
	return nil
}

// Offset 1-based page 转换为偏移量
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// TotalPages 向上取整
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
