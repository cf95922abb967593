package weinfusesync

import (
	"context"

	"bitbucket.org/mmdatafocus/weinfuse_backend/models"
	"bitbucket.org/mmdatafocus/weinfuse_backend/utils"
)

// Writer persists resolved lines. Lines that failed resolution are still
// written with their failure status so the reporting side sees every
// fetched line, not just the clean ones.
type Writer struct {
	cfg SyncConfig
}

func NewWriter(cfg SyncConfig) *Writer {
	return &Writer{cfg: cfg}
}

// StageLine upserts one staging report line keyed by its line id.
func (w *Writer) StageLine(ctx context.Context, line LineRecord, res Resolution, runId uint) (bool, error) {
	record := w.buildStagingRecord(line, res, runId)
	return models.UpsertStagingRecord(ctx, &record)
}

// buildStagingRecord maps a projected line onto the staging row. The
// serialized source row travels with the record so a miss can be
// re-examined without refetching the report.
func (w *Writer) buildStagingRecord(line LineRecord, res Resolution, runId uint) models.StagingRecord {
	raw, _ := utils.MarshalToJSON(line)
	return models.StagingRecord{
		LineId:             line.LineId,
		WeInfuse:           line.WeInfuseUid,
		Status:             res.Status,
		CustomerId:         res.CustomerId,
		LocationId:         res.LocationId,
		ShipToId:           res.ShipToId,
		ItemId:             res.ItemId,
		CustomerName:       line.GroupName,
		LocationName:       line.LocationName,
		ShipToLabel:        firstToken(line.LocationName),
		ItemLabel:          line.ItemLabel,
		Ndc:                line.InnerNdc,
		Unit:               line.Uom,
		Quantity:           line.Strength,
		Lot:                line.Lot,
		PatientId:          line.PatientIdent,
		ReportDate:         ParseReportDate(line.CreatedTime, w.cfg.DateLayout),
		ExpirationDate:     ParseReportDate(line.ExpirationDate, w.cfg.DateLayout),
		TransactionCreated: ParseReportTime(line.CreatedTime, w.cfg.DateLayout),
		LineJSON:           []byte(raw),
		SyncRunId:          runId,
	}
}

// WriteUsageLine upserts one usage report line. In two-phase mode the
// line is stored without its location first and the location is patched
// in afterwards; a failed patch marks the line instead of losing it.
func (w *Writer) WriteUsageLine(ctx context.Context, line LineRecord, res Resolution, runId uint, twoPhase bool) (bool, error) {
	record := w.buildWeinfuseRecord(line, res, runId)

	if !twoPhase {
		record.LocationId = res.LocationId
		return models.UpsertWeinfuseRecord(ctx, &record)
	}

	created, err := models.UpsertWeinfuseRecord(ctx, &record)
	if err != nil {
		return created, err
	}
	if err := models.PatchWeinfuseRecordLocation(ctx, line.LineId, res.LocationId, res.Status); err != nil {
		_ = models.PatchWeinfuseRecordLocation(ctx, line.LineId, 0, models.StatusLocationPatchFailed)
		return created, err
	}
	return created, nil
}

func (w *Writer) buildWeinfuseRecord(line LineRecord, res Resolution, runId uint) models.WeinfuseRecord {
	raw, _ := utils.MarshalToJSON(line)
	return models.WeinfuseRecord{
		LineId:             line.LineId,
		WeInfuse:           line.WeInfuseUid,
		Status:             res.Status,
		CustomerId:         res.CustomerId,
		ShipToId:           res.ShipToId,
		ItemId:             res.ItemId,
		GroupId:            line.GroupId,
		GroupName:          line.GroupName,
		SourceLocationId:   line.LocationId,
		SourceLocationName: line.LocationName,
		OrderSeriesId:      line.OrderSeriesId,
		OrderInventoryId:   line.OrderInventoryId,
		AppointmentInvId:   line.AppointmentInvId,
		PatientIdent:       line.PatientIdent,
		InventoryItemId:    line.InventoryItemId,
		Ndc:                line.InnerNdc,
		OuterNdc:           line.OuterNdc,
		ItemLabel:          line.ItemLabel,
		Uom:                line.Uom,
		Quantity:           line.Strength,
		Lot:                line.Lot,
		ReportDate:         ParseReportDate(line.CreatedTime, w.cfg.DateLayout),
		Expiration:         ParseReportDate(line.ExpirationDate, w.cfg.DateLayout),
		TransactionCreated: ParseReportTime(line.CreatedTime, w.cfg.DateLayout),
		ObjectLineJSON:     []byte(raw),
		SyncRunId:          runId,
	}
}
