package masker

import (
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

const maskedTag = "masked"

var durationType = reflect.TypeOf(time.Duration(0))

// LogConfigs logs each config struct on its own line. Fields tagged
// `masked:"true"` are masked; nested structs are logged inline.
func LogConfigs(logger *zap.Logger, configs ...interface{}) error {
	for _, config := range configs {
		v := reflect.ValueOf(config)
		if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return ErrConfigNotPointer
		}
		v = v.Elem()

		logger.Info("config", zap.Any(v.Type().Name(), maskStructFields(v, v.Type())))
	}
	return nil
}

func maskStructFields(v reflect.Value, t reflect.Type) map[string]interface{} {
	result := make(map[string]interface{})
	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		if !fieldType.IsExported() {
			continue
		}
		field := v.Field(i)
		masked := fieldType.Tag.Get(maskedTag) == "true"

		switch {
		case field.Kind() == reflect.Struct:
			result[fieldType.Name] = maskStructFields(field, field.Type())
		case field.Type() == durationType:
			result[fieldType.Name] = time.Duration(field.Int()).String()
		case field.Kind() == reflect.String && masked:
			result[fieldType.Name] = maskSensitiveData(field.String())
		case masked:
			// slices, numbers and pointers are masked as a whole
			if field.IsZero() {
				result[fieldType.Name] = ""
			} else {
				result[fieldType.Name] = maskSensitiveData(fmt.Sprint(field.Interface()))
			}
		default:
			result[fieldType.Name] = field.Interface()
		}
	}
	return result
}

// maskSensitiveData keeps the first and last characters. Values of two
// characters or fewer are fully hidden.
func maskSensitiveData(data string) string {
	if len(data) <= 2 {
		return "****"
	}
	return string(data[0]) + "****" + string(data[len(data)-1])
}
