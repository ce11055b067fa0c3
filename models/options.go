// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoOptions         = errors.New("at least one option is required")
	ErrEmptyOptionID     = errors.New("option id is empty")
	ErrDuplicateOptionID = errors.New("duplicate option id")
	ErrEmptyOptionText   = errors.New("option text is empty")
	ErrEmptyTitle        = errors.New("title is required")
	ErrInvalidWindow     = errors.New("end date must be after start date")
)

type Option struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Options is the ordered option list of a voting. It is stored as a JSON
// document and validated whenever it crosses the storage boundary.
type Options []Option

// Validate checks that the list is non-empty and every option has a unique
// id and non-blank text.
func (o Options) Validate() error {
	if len(o) == 0 {
		return ErrNoOptions
	}
	seen := make(map[string]bool, len(o))
	for i, opt := range o {
		if strings.TrimSpace(opt.ID) == "" {
			return fmt.Errorf("option %d: %w", i, ErrEmptyOptionID)
		}
		if seen[opt.ID] {
			return fmt.Errorf("option %q: %w", opt.ID, ErrDuplicateOptionID)
		}
		seen[opt.ID] = true
		if strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("option %q: %w", opt.ID, ErrEmptyOptionText)
		}
	}
	return nil
}

// Find returns the option with the given id.
func (o Options) Find(id string) (Option, bool) {
	for _, opt := range o {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Value implements driver.Valuer.
func (o Options) Value() (driver.Value, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Both TEXT (sqlite) and JSONB (postgres)
// columns are accepted.
func (o *Options) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		return ErrNoOptions
	default:
		return fmt.Errorf("unsupported options column type %T", src)
	}

	var opts Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return fmt.Errorf("failed to decode options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	*o = opts
	return nil
}

// ValidateSchedule checks title, time window and options of a voting.
func ValidateSchedule(s VotingSchedule) error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if !s.EndDate.After(s.StartDate) {
		return ErrInvalidWindow
	}
	return s.Options.Validate()
}
