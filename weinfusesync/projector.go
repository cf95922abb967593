package weinfusesync

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// reportColumns is the fixed projection table. A report row is a map of
// column name to value; only these columns are kept, everything else is
// ignored. The staging report carries a subset of the usage columns, so
// one table serves both.
var reportColumns = map[string]func(*LineRecord, interface{}){
	"inventory_items.line_item_id":      func(r *LineRecord, v interface{}) { r.LineId = coerceString(v) },
	"group.id":                          func(r *LineRecord, v interface{}) { r.GroupId = coerceString(v) },
	"group.name":                        func(r *LineRecord, v interface{}) { r.GroupName = coerceString(v) },
	"locations.id":                      func(r *LineRecord, v interface{}) { r.LocationId = coerceString(v) },
	"locations.name":                    func(r *LineRecord, v interface{}) { r.LocationName = coerceString(v) },
	"orders_inventory.order_series_id":  func(r *LineRecord, v interface{}) { r.OrderSeriesId = coerceString(v) },
	"orders_inventory.id":               func(r *LineRecord, v interface{}) { r.OrderInventoryId = coerceString(v) },
	"appointments_inventory.id":         func(r *LineRecord, v interface{}) { r.AppointmentInvId = coerceString(v) },
	"patients_inventory.id":             func(r *LineRecord, v interface{}) { r.WeInfuseUid = coerceString(v) },
	"patients_inventory.identifier":     func(r *LineRecord, v interface{}) { r.PatientIdent = coerceString(v) },
	"inventory_items.ndc_code":          func(r *LineRecord, v interface{}) { r.InnerNdc = coerceString(v) },
	"inventory_items.outer_ndc_code":    func(r *LineRecord, v interface{}) { r.OuterNdc = coerceString(v) },
	"inventory_items.label_name":        func(r *LineRecord, v interface{}) { r.ItemLabel = coerceString(v) },
	"inventory_items.strength":          func(r *LineRecord, v interface{}) { r.Strength = coerceDecimal(v) },
	"inventory_items.uom":               func(r *LineRecord, v interface{}) { r.Uom = coerceString(v) },
	"inventory_items.lot":               func(r *LineRecord, v interface{}) { r.Lot = coerceString(v) },
	"inventory_items.expiration_date":   func(r *LineRecord, v interface{}) { r.ExpirationDate = coerceString(v) },
	"inventory_items.created_time":      func(r *LineRecord, v interface{}) { r.CreatedTime = coerceString(v) },
	"inventory_items.inventory_item_id": func(r *LineRecord, v interface{}) { r.InventoryItemId = coerceString(v) },
}

// ProjectRow maps one raw report row onto a LineRecord. It is total: a
// missing column leaves the zero value, an unknown column is skipped, and
// an unparseable numeric becomes zero. Row-shape problems never abort a
// run, they surface later as resolution failures.
func ProjectRow(row map[string]interface{}) LineRecord {
	var record LineRecord
	for column, value := range row {
		setter, ok := reportColumns[column]
		if !ok {
			continue
		}
		setter(&record, value)
	}
	return record
}

func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		// JSON numbers decode as float64; ids come through here.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func coerceDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(val)
	case json.Number:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d
		}
		return decimal.Zero
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}
