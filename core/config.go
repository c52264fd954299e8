package core

import (
	"fmt"
	"strings"
)

// DefaultZone is used when no zone is given to Connect.
const DefaultZone = "default"

type FetchMode int

const (
	FetchAssoc FetchMode = iota
	FetchNum
	FetchBoth
)

func (mode FetchMode) String() string {
	switch mode {
	case FetchAssoc:
		return "assoc"
	case FetchNum:
		return "num"
	case FetchBoth:
		return "both"
	default:
		return fmt.Sprintf("FetchMode(%d)", int(mode))
	}
}

func (mode FetchMode) MarshalText() ([]byte, error) {
	return []byte(mode.String()), nil
}

func (mode *FetchMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "assoc":
		*mode = FetchAssoc
	case "num":
		*mode = FetchNum
	case "both":
		*mode = FetchBoth
	default:
		return fmt.Errorf("unknown fetch mode %q", string(text))
	}
	return nil
}

// Zone is a named connection profile.
type Zone struct {
	Scheme   string `json:"scheme"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Database string `json:"dbname"`
	User     string `json:"user"`
	Password string `json:"pass"`
	// Driver overrides the database/sql driver registered for Scheme.
	Driver string `json:"driver,omitempty"`
}

type Config struct {
	Fetch       FetchMode       `json:"fetch"`
	Connections map[string]Zone `json:"connections"`
}

// Zone returns the profile registered under name.
func (config *Config) Zone(name string) (Zone, bool) {
	if config == nil || config.Connections == nil {
		return Zone{}, false
	}
	zone, ok := config.Connections[name]
	return zone, ok
}
