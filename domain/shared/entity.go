package shared

import "time"

// Base 所有后端管理实体的公共字段。ID 与时间戳由后端分配，客户端不可修改。
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) Meta() *Base { return b }

// Entity 由 Client 管理的资源。
type Entity interface {
	Meta() *Base
	Validate() error
}

// Record 约束 T 的指针类型实现 Entity，供泛型仓储使用：
//
//	func NewRepository[T any, P Record[T]](...)
type Record[T any] interface {
	*T
	Entity
}

// Revalidating 更新后需要通知外部缓存失效的实体
type Revalidating interface {
	RevalidatePaths() []string
}

// RichText 带有 HTML 富文本字段的实体，写入前统一清洗
type RichText interface {
	SanitizeRichText(sanitize func(string) string)
}

// Named 返回实体在日志/错误中的名称
type Named interface {
	EntityName() string
}

// EntityName 取实体名称，未实现 Named 时返回 "resource"
func EntityName(e any) string {
	if n, ok := e.(Named); ok {
		return n.EntityName()
	}
	return "resource"
}
