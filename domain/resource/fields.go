package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"expoadmin/domain/shared"
)

// Fields 按 JSON 字段名索引的部分字段
type Fields map[string]any

// FieldsOf 将结构体转换为 Fields
func FieldsOf(v any) (Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// Without 返回去掉指定键的副本
func (f Fields) Without(keys ...string) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Build 由字段构造新实体。id 与时间戳由后端分配，调用方不得提供 id。
func Build[T any, P shared.Record[T]](fields Fields) (P, error) {
	var zero T
	entity := shared.EntityName(P(&zero))
	if _, ok := fields["id"]; ok {
		return nil, shared.NewValidationError(entity, "id", "id is assigned by the backend")
	}
	return merge[T, P](P(&zero), fields.Without("created_at", "updated_at"))
}

// Apply 将部分字段合并到 current 的副本上并校验；current 不被修改。
// id 与 created_at 不可变，提供不同的值返回 ValidationError；updated_at 被忽略。
func Apply[T any, P shared.Record[T]](current P, fields Fields) (P, error) {
	meta := current.Meta()
	entity := shared.EntityName(current)

	if raw, ok := fields["id"]; ok {
		if id, _ := raw.(string); id != meta.ID {
			return nil, shared.NewValidationError(entity, "id", "id is immutable")
		}
	}
	if raw, ok := fields["created_at"]; ok {
		if !sameTime(raw, meta.CreatedAt) {
			return nil, shared.NewValidationError(entity, "created_at", "created_at is immutable")
		}
	}

	next, err := merge[T, P](current, fields.Without("id", "created_at", "updated_at"))
	if err != nil {
		return nil, err
	}
	*next.Meta() = *meta
	return next, nil
}

func merge[T any, P shared.Record[T]](current P, fields Fields) (P, error) {
	entity := shared.EntityName(current)

	base, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity, err)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", entity, err)
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, shared.NewValidationError(entity, k, k+" cannot be encoded")
		}
		doc[k] = raw
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity, err)
	}

	next := P(new(T))
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(next); err != nil {
		return nil, decodeError(entity, err)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

func decodeError(entity string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return shared.NewValidationError(entity, typeErr.Field,
			fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String()))
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return shared.NewValidationError(entity, field, "unknown field "+field)
	}
	return shared.NewValidationError(entity, "", msg)
}

func sameTime(raw any, t time.Time) bool {
	switch v := raw.(type) {
	case time.Time:
		return v.Equal(t)
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		return err == nil && parsed.Equal(t)
	default:
		return false
	}
}
