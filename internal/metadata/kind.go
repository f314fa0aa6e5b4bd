package metadata

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is an EDM simple type name, e.g. "Edm.String".
type Kind string

// The fixed enumeration of scalar type kinds.
const (
	KindString         Kind = "Edm.String"
	KindBoolean        Kind = "Edm.Boolean"
	KindSByte          Kind = "Edm.SByte"
	KindByte           Kind = "Edm.Byte"
	KindInt16          Kind = "Edm.Int16"
	KindInt32          Kind = "Edm.Int32"
	KindInt64          Kind = "Edm.Int64"
	KindSingle         Kind = "Edm.Single"
	KindDouble         Kind = "Edm.Double"
	KindDecimal        Kind = "Edm.Decimal"
	KindBinary         Kind = "Edm.Binary"
	KindDateTime       Kind = "Edm.DateTime"
	KindDateTimeOffset Kind = "Edm.DateTimeOffset"
	KindTime           Kind = "Edm.Time"
	KindGuid           Kind = "Edm.Guid"
)

var knownKinds = map[Kind]bool{
	KindString: true, KindBoolean: true, KindSByte: true, KindByte: true,
	KindInt16: true, KindInt32: true, KindInt64: true, KindSingle: true,
	KindDouble: true, KindDecimal: true, KindBinary: true, KindDateTime: true,
	KindDateTimeOffset: true, KindTime: true, KindGuid: true,
}

// KnownKind reports whether k names one of the fixed scalar kinds.
func KnownKind(k Kind) bool { return knownKinds[k] }

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
	decimalType  = reflect.TypeOf(decimal.Decimal{})
	byteSlice    = reflect.TypeOf([]byte(nil))
)

// MapKind maps a Go field type onto its EDM scalar kind. Pointer types map
// like their element type. Types outside the fixed enumeration are a hard
// construction error.
func MapKind(t reflect.Type) (Kind, error) {
	t = derefType(t)

	switch t {
	case timeType:
		return KindDateTimeOffset, nil
	case durationType:
		return KindTime, nil
	case uuidType:
		return KindGuid, nil
	case decimalType:
		return KindDecimal, nil
	case byteSlice:
		return KindBinary, nil
	}

	switch t.Kind() {
	case reflect.String:
		return KindString, nil
	case reflect.Bool:
		return KindBoolean, nil
	case reflect.Int8:
		return KindSByte, nil
	case reflect.Uint8:
		return KindByte, nil
	case reflect.Int16:
		return KindInt16, nil
	case reflect.Int32, reflect.Int:
		return KindInt32, nil
	case reflect.Int64:
		return KindInt64, nil
	case reflect.Float32:
		return KindSingle, nil
	case reflect.Float64:
		return KindDouble, nil
	}

	return "", fmt.Errorf("unsupported property type %s", t)
}
