/*
Package content 后端管理的站点内容实体。

所有实体嵌入 shared.Base（id 与时间戳由后端分配），字段名使用 JSON snake_case，
同一结构体同时用于 gorm 表映射与 API 传输。
*/
package content
