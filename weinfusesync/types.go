package weinfusesync

import (
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/models"
	"github.com/shopspring/decimal"
)

const (
	ReportStaging = "staging"
	ReportUsage   = "usage"
)

// LineRecord is one projected report row. The json tags are the report's
// dotted column paths, so serializing a line reproduces the source row
// shape the reporting side emits.
type LineRecord struct {
	LineId           string          `json:"inventory_items.line_item_id"`
	GroupId          string          `json:"group.id"`
	GroupName        string          `json:"group.name"`
	LocationId       string          `json:"locations.id"`
	LocationName     string          `json:"locations.name"`
	OrderSeriesId    string          `json:"orders_inventory.order_series_id"`
	OrderInventoryId string          `json:"orders_inventory.id"`
	AppointmentInvId string          `json:"appointments_inventory.id"`
	WeInfuseUid      string          `json:"patients_inventory.id"`
	PatientIdent     string          `json:"patients_inventory.identifier"`
	InnerNdc         string          `json:"inventory_items.ndc_code"`
	OuterNdc         string          `json:"inventory_items.outer_ndc_code"`
	ItemLabel        string          `json:"inventory_items.label_name"`
	Strength         decimal.Decimal `json:"inventory_items.strength"`
	Uom              string          `json:"inventory_items.uom"`
	Lot              string          `json:"inventory_items.lot"`
	ExpirationDate   string          `json:"inventory_items.expiration_date"`
	CreatedTime      string          `json:"inventory_items.created_time"`
	InventoryItemId  string          `json:"inventory_items.inventory_item_id"`
}

// RunOptions controls block partitioning and write mode for one run.
type RunOptions struct {
	BlockSize int  `json:"blockSize"`
	AllBlocks bool `json:"allBlocks"`
	TwoPhase  bool `json:"twoPhase"`
}

func DefaultRunOptions() RunOptions {
	return RunOptions{
		BlockSize: 500,
		AllBlocks: true,
		TwoPhase:  false,
	}
}

func NormalizeRunOptions(opts RunOptions) RunOptions {
	if opts.BlockSize <= 0 {
		opts.BlockSize = 500
	}
	return opts
}

func DecodeRunOptions(raw []byte) RunOptions {
	if len(raw) == 0 {
		return DefaultRunOptions()
	}
	var opts RunOptions
	if err := json.Unmarshal(raw, &opts); err != nil {
		return DefaultRunOptions()
	}
	return NormalizeRunOptions(opts)
}

func EncodeRunOptions(opts RunOptions) []byte {
	b, _ := json.Marshal(NormalizeRunOptions(opts))
	return b
}

// SyncConfig is an immutable snapshot of the connector config taken at
// the start of a run, so a config edit mid-run cannot change behavior.
type SyncConfig struct {
	TokenURL       string
	ReportURL      string
	QueryResultURL string
	ClientId       string
	ClientSecret   string
	StagingReport  string
	UsageReport    string
	CoreCategoryId uint
	CoreLocationId uint
	DateLayout     string
}

func NewSyncConfig(cfg models.WeinfuseConfig) SyncConfig {
	return SyncConfig{
		TokenURL:       cfg.TokenURL,
		ReportURL:      cfg.ReportURL,
		QueryResultURL: cfg.QueryResultURL,
		ClientId:       cfg.ClientId,
		ClientSecret:   cfg.ClientSecret,
		StagingReport:  cfg.StagingReport,
		UsageReport:    cfg.UsageReport,
		CoreCategoryId: cfg.CoreCategoryId,
		CoreLocationId: cfg.CoreLocationId,
		DateLayout:     CompanyDateLayout(cfg.DateFormat),
	}
}

// ReportName returns the configured saved-report name for one report kind.
func (sc SyncConfig) ReportName(report string) string {
	if report == ReportUsage {
		return sc.UsageReport
	}
	return sc.StagingReport
}

// Resolution is the outcome of matching one line against the masters.
// Status is models.StatusReceived when every lookup hit exactly one row.
type Resolution struct {
	Status     int
	CustomerId uint
	LocationId uint
	ShipToId   uint
	ItemId     uint
}

type TriggerSyncRequest struct {
	Report    string `json:"report" binding:"required"`
	BlockSize int    `json:"blockSize"`
	AllBlocks *bool  `json:"allBlocks"`
	TwoPhase  *bool  `json:"twoPhase"`
}

type StatusResponse struct {
	Configured bool             `json:"configured"`
	Reports    []string         `json:"reports"`
	LastRun    *SyncRunResponse `json:"lastRun"`
}

type SyncHistoryResponse struct {
	Items []SyncRunResponse `json:"items"`
}

type SyncRunResponse struct {
	ID             uint    `json:"id"`
	Report         string  `json:"report"`
	Status         string  `json:"status"`
	StartedAt      *string `json:"startedAt"`
	FinishedAt     *string `json:"finishedAt"`
	DurationMs     int64   `json:"durationMs"`
	RecordsFetched int     `json:"recordsFetched"`
	RecordsCreated int     `json:"recordsCreated"`
	RecordsUpdated int     `json:"recordsUpdated"`
	RecordsFailed  int     `json:"recordsFailed"`
	TriggeredBy    string  `json:"triggeredBy"`
}

type SyncRunDetailResponse struct {
	SyncRunResponse
	FailureReason string              `json:"failureReason,omitempty"`
	Errors        []SyncErrorResponse `json:"errors"`
}

type SyncErrorResponse struct {
	ID        uint   `json:"id"`
	LineId    string `json:"lineId"`
	ErrorCode int    `json:"errorCode"`
	Label     string `json:"label"`
	Message   string `json:"message"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
		ID   string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type SyncPubSubPayload struct {
	RunId   uint       `json:"run_id"`
	Report  string     `json:"report"`
	Options RunOptions `json:"options"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
