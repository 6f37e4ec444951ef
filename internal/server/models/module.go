package models

import "encoding/json"

// Module is a catalog entry: a feature area users can switch on and off.
// Name is the stable slug used in URLs and settings records.
type Module struct {
	Name            string          `json:"name"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Icon            string          `json:"icon"`
	IsSystem        bool            `json:"isSystem"`
	DisplayOrder    int             `json:"displayOrder"`
	DefaultSettings json.RawMessage `json:"defaultSettings"`
}
