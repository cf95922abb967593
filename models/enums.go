package models

// Line resolution status codes stored on staging and usage lines. The
// numeric values are shared with the reporting side, so they must not be
// renumbered.
const (
	StatusReceived            = 1
	StatusItemNotFound        = 5
	StatusItemAmbiguous       = 6
	StatusLocationNotFound    = 7
	StatusLocationAmbiguous   = 8
	StatusInternalError       = 9
	StatusCustomerNotFound    = 10
	StatusCustomerAmbiguous   = 11
	StatusShipToNotFound      = 12
	StatusShipToAmbiguous     = 13
	StatusLocationPatchFailed = 17
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncTriggeredManual = "manual"
	SyncTriggeredRetry  = "retry"
	SyncTriggeredSystem = "system"
)

// StatusLabel maps a resolution status code to a short human label for
// logs and the run detail API.
func StatusLabel(code int) string {
	switch code {
	case StatusReceived:
		return "received"
	case StatusItemNotFound:
		return "item not found"
	case StatusItemAmbiguous:
		return "item ambiguous"
	case StatusLocationNotFound:
		return "location not found"
	case StatusLocationAmbiguous:
		return "location ambiguous"
	case StatusInternalError:
		return "internal error"
	case StatusCustomerNotFound:
		return "customer not found"
	case StatusCustomerAmbiguous:
		return "customer ambiguous"
	case StatusShipToNotFound:
		return "ship-to not found"
	case StatusShipToAmbiguous:
		return "ship-to ambiguous"
	case StatusLocationPatchFailed:
		return "location patch failed"
	default:
		return "unknown"
	}
}
