package weinfusesync

import (
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/weinfuse_backend/models"
	"github.com/shopspring/decimal"
)

func writerLine() LineRecord {
	return LineRecord{
		LineId:         "4917042",
		GroupName:      "C029H Main Clinic",
		LocationName:   "L0404 North Annex",
		WeInfuseUid:    "331188",
		PatientIdent:   "P-1001",
		InnerNdc:       "00338-0049-03",
		OuterNdc:       "00074-3799-13",
		ItemLabel:      "Sodium Chloride 0.9%",
		Strength:       decimal.NewFromInt(250),
		Uom:            "mL",
		Lot:            "LOT-9",
		ExpirationDate: "2024-11-30",
		CreatedTime:    "2023-06-06 19:05:50",
	}
}

func TestBuildStagingRecord(t *testing.T) {
	writer := NewWriter(SyncConfig{})
	res := Resolution{Status: models.StatusReceived, CustomerId: 11, LocationId: 22, ShipToId: 33, ItemId: 44}

	record := writer.buildStagingRecord(writerLine(), res, 7)

	if record.LineId != "4917042" || record.SyncRunId != 7 {
		t.Fatalf("unexpected keys: %+v", record)
	}
	if record.WeInfuse != "331188" {
		t.Fatalf("expected the weinfuse uid on the record; got %q", record.WeInfuse)
	}
	if record.Ndc != "00338-0049-03" {
		t.Fatalf("staging ndc must be the inner code; got %q", record.Ndc)
	}
	if record.ItemLabel != "Sodium Chloride 0.9%" {
		t.Fatalf("unexpected item label %q", record.ItemLabel)
	}
	if !record.Quantity.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("quantity must carry the strength; got %s", record.Quantity.String())
	}
	if record.ReportDate == nil || record.ReportDate.Format("2006-01-02") != "2023-06-06" {
		t.Fatalf("report date must come from the created time; got %v", record.ReportDate)
	}
	if record.ExpirationDate == nil || record.ExpirationDate.Format("2006-01-02") != "2024-11-30" {
		t.Fatalf("unexpected expiration date %v", record.ExpirationDate)
	}
	if record.ShipToLabel != "L0404" {
		t.Fatalf("unexpected ship-to label %q", record.ShipToLabel)
	}
	raw := string(record.LineJSON)
	if !strings.Contains(raw, `"inventory_items.line_item_id":"4917042"`) ||
		!strings.Contains(raw, `"group.name":"C029H Main Clinic"`) {
		t.Fatalf("serialized source row missing from record: %s", raw)
	}
}

func TestBuildWeinfuseRecord(t *testing.T) {
	writer := NewWriter(SyncConfig{})
	res := Resolution{Status: models.StatusReceived, CustomerId: 11, LocationId: 22, ShipToId: 33, ItemId: 44}

	record := writer.buildWeinfuseRecord(writerLine(), res, 7)

	if record.WeInfuse != "331188" {
		t.Fatalf("expected the weinfuse uid on the record; got %q", record.WeInfuse)
	}
	if record.Ndc != "00338-0049-03" || record.OuterNdc != "00074-3799-13" {
		t.Fatalf("unexpected ndc codes: %q %q", record.Ndc, record.OuterNdc)
	}
	if !record.Quantity.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("quantity must carry the strength; got %s", record.Quantity.String())
	}
	if record.Expiration == nil || record.Expiration.Format("2006-01-02") != "2024-11-30" {
		t.Fatalf("unexpected expiration %v", record.Expiration)
	}
	if record.ReportDate == nil || record.ReportDate.Format("2006-01-02") != "2023-06-06" {
		t.Fatalf("report date must come from the created time; got %v", record.ReportDate)
	}
	if len(record.ObjectLineJSON) == 0 || !strings.Contains(string(record.ObjectLineJSON), `"patients_inventory.id":"331188"`) {
		t.Fatalf("serialized source row missing from record: %s", record.ObjectLineJSON)
	}
	// Location attaches in the write step, not here.
	if record.LocationId != 0 {
		t.Fatalf("location must not be set by the builder; got %d", record.LocationId)
	}
}
