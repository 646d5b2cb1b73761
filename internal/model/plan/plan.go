// Package plan builds the export payload published for completed
// advisory sessions. Consumers (the plan sink, dashboards) read it as
// JSON; field names follow the record's export tags.
package plan

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/advisor-bot/internal/entity/finance"
)

type Export struct {
	SessionID   int64          `json:"sessionId"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Record      finance.Record `json:"record"`
}

func NewExport(sessionID int64, rec finance.Record) Export {
	return Export{
		SessionID:   sessionID,
		GeneratedAt: time.Now(),
		Record:      rec,
	}
}

func (e Export) Marshal() ([]byte, error) {
	raw, err := json.Marshal(e)
	return raw, errors.Wrap(err, "marshal plan export")
}

func Unmarshal(raw []byte) (Export, error) {
	var e Export
	err := json.Unmarshal(raw, &e)
	return e, errors.Wrap(err, "unmarshal plan export")
}
