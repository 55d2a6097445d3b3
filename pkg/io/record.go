package io

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/model"
)

// TimeFormat is the text form of record timestamps.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Record is the persisted form of a diagram.
type Record struct {
	ID          string            `json:"id" yaml:"id" bson:"_id"`
	Name        string            `json:"name" yaml:"name" bson:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   string            `json:"createdAt" yaml:"createdAt" bson:"createdAt"`
	UpdatedAt   string            `json:"updatedAt" yaml:"updatedAt" bson:"updatedAt"`
	Actors      []model.Actor     `json:"actors" yaml:"actors" bson:"actors"`
	States      []model.State     `json:"states" yaml:"states" bson:"states"`
	Flows       []model.Flow      `json:"flows" yaml:"flows" bson:"flows"`
	Conditions  []model.Condition `json:"conditions" yaml:"conditions" bson:"conditions"`
}

// FormatTime renders t as a record timestamp.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a record timestamp. Any RFC 3339 time is accepted; the
// result is UTC truncated to milliseconds.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

// ToRecord converts d to its persisted form. Collections are copied.
func ToRecord(d *model.Diagram) Record {
	c := d.Clone()
	return Record{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   FormatTime(c.CreatedAt),
		UpdatedAt:   FormatTime(c.UpdatedAt),
		Actors:      c.Actors,
		States:      c.States,
		Flows:       c.Flows,
		Conditions:  c.Conditions,
	}
}

// FromRecord converts a persisted record back to a diagram.
func FromRecord(r Record) (*model.Diagram, error) {
	created, err := ParseTime(r.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "diagram %s: invalid createdAt %q", r.ID, r.CreatedAt)
	}
	updated, err := ParseTime(r.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "diagram %s: invalid updatedAt %q", r.ID, r.UpdatedAt)
	}
	d := &model.Diagram{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   created,
		UpdatedAt:   updated,
		Actors:      r.Actors,
		States:      r.States,
		Flows:       r.Flows,
		Conditions:  r.Conditions,
	}
	return d.Clone(), nil
}

// MarshalRecord encodes d as compact record JSON.
func MarshalRecord(d *model.Diagram) ([]byte, error) {
	b, err := json.Marshal(ToRecord(d))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram %s", d.ID)
	}
	return b, nil
}

// UnmarshalRecord decodes record JSON produced by [MarshalRecord].
func UnmarshalRecord(data []byte) (*model.Diagram, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram record")
	}
	return FromRecord(r)
}
