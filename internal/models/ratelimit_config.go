package models

import "time"

// RatelimitConfig is the request rate applied to the API, stored in the
// database so operators can loosen it without a redeploy. Rate uses the
// "limit-period" format ("10-S", "100-M"); the prompt endpoint is polled by
// clients, so the default must sit well above one request per second.
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
