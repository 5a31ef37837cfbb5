package binding

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// QueryParser 查询参数解析器
type QueryParser struct {
	tagName    string
	defaultTag string
}

// NewQueryParser 创建新的查询参数解析器
func NewQueryParser() *QueryParser {
	return &QueryParser{
		tagName:    "query",
		defaultTag: "default",
	}
}

// Parse 解析查询参数到结构体。缺失的参数保持零值（指针保持 nil），
// 除非字段带有 default 标签。
func (qp *QueryParser) Parse(values url.Values, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &BindError{
			Type:    "bind_error",
			Message: "v must be a non-nil pointer",
		}
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return &BindError{
			Type:    "bind_error",
			Message: "v must be a pointer to struct",
		}
	}

	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		name := qp.getQueryName(fieldType)
		if name == "-" {
			continue
		}

		raw, ok := firstValue(values, name)
		if !ok {
			if raw = fieldType.Tag.Get(qp.defaultTag); raw == "" {
				continue
			}
		}

		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			field = field.Elem()
		}
		if err := setField(field, raw, name); err != nil {
			return err
		}
	}
	return nil
}

func firstValue(values url.Values, name string) (string, bool) {
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// getQueryName 获取字段对应的查询参数名: query 标签, json 标签, 字段名小写
func (qp *QueryParser) getQueryName(fieldType reflect.StructField) string {
	for _, tag := range []string{qp.tagName, "json"} {
		if tagValue := fieldType.Tag.Get(tag); tagValue != "" {
			return strings.Split(tagValue, ",")[0]
		}
	}
	return strings.ToLower(fieldType.Name)
}

// setField 根据字段类型设置值
func setField(field reflect.Value, value, name string) error {
	invalid := func(kind string, err error) error {
		return &BindError{
			Type:    "bind_error",
			Field:   name,
			Message: "invalid " + kind + " value: " + err.Error(),
		}
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intVal, err := strconv.ParseInt(strings.TrimSpace(value), 10, field.Type().Bits())
		if err != nil {
			return invalid("integer", err)
		}
		field.SetInt(intVal)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		uintVal, err := strconv.ParseUint(strings.TrimSpace(value), 10, field.Type().Bits())
		if err != nil {
			return invalid("unsigned integer", err)
		}
		field.SetUint(uintVal)

	case reflect.Float32, reflect.Float64:
		floatVal, err := strconv.ParseFloat(strings.TrimSpace(value), field.Type().Bits())
		if err != nil {
			return invalid("float", err)
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return invalid("boolean", err)
		}
		field.SetBool(boolVal)

	default:
		return &BindError{
			Type:    "bind_error",
			Field:   name,
			Message: "unsupported field type: " + field.Kind().String(),
		}
	}
	return nil
}
